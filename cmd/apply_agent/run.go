package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/quick-apply/internal/answer"
	"github.com/jonathan/quick-apply/internal/apply"
	"github.com/jonathan/quick-apply/internal/browser"
	"github.com/jonathan/quick-apply/internal/config"
	"github.com/jonathan/quick-apply/internal/db"
	"github.com/jonathan/quick-apply/internal/form"
	"github.com/jonathan/quick-apply/internal/llm"
	"github.com/jonathan/quick-apply/internal/observability"
	"github.com/jonathan/quick-apply/internal/outcome"
	"github.com/jonathan/quick-apply/internal/pacing"
)

// listRetryDelay spaces out the reads of a result list that is still rendering.
var listRetryDelay = pacing.Settle{Min: time.Second, Max: 2 * time.Second}

// runSteps are the progress lines printed by run, in order.
var runSteps = []string{
	"Loading profile, selectors and blacklist...",
	"Connecting to the language model...",
	"Opening outcome logs...",
	"Starting the browser...",
	"Applying",
}

// stepLine formats progress line n (1-based) of runSteps.
func stepLine(n int) string {
	return fmt.Sprintf("Step %d/%d: %s", n, len(runSteps), runSteps[n-1])
}

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Apply to every quick-apply listing of the configured searches",
	Long: `Opens the browser session, logs in if needed, and works through each configured search URL:
listings that are already applied to or blacklisted are skipped, every other quick-apply form is
filled and submitted. Failed attempts are discarded and written to the failed log.

Configuration is loaded from --config. Command-line flags override config file values.`,
	RunE: runApplyCmd,
}

var (
	runConfigPath  string
	runSearchURLs  []string
	runMaxPages    int
	runResume      string
	runHeadless    bool
	runVerbose     bool
	runDatabaseURL string
	runProvider    string
)

func init() {
	addRunFlags(runCommand)
	rootCmd.AddCommand(runCommand)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runConfigPath, "config", "config.yaml", "Path to config.yaml")

	cmd.Flags().StringSliceVar(&runSearchURLs, "search-url", nil, "Search results URL (repeatable, replaces search.urls)")
	cmd.Flags().IntVar(&runMaxPages, "max-pages", 0, "Maximum result pages per search")
	cmd.Flags().StringVar(&runResume, "resume", "", "Resume file uploaded to every application")
	cmd.Flags().BoolVar(&runHeadless, "headless", false, "Run Chrome without a window")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")
	cmd.Flags().StringVar(&runProvider, "provider", "", "LLM provider: gemini, vertex or openai")

	// Database URL for attempt persistence
	cmd.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL URL or SQLite path (optional, defaults to DATABASE_URL env var, then <data_dir>/attempts.db)")
}

// applyRunOverrides copies explicitly set flags over the loaded configuration.
func applyRunOverrides(cmd *cobra.Command, cfg *config.AppConfig) {
	if cmd.Flags().Changed("search-url") {
		cfg.Search.URLs = runSearchURLs
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.Search.MaxResultPages = runMaxPages
	}
	if cmd.Flags().Changed("resume") {
		cfg.ResumePath = runResume
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = runHeadless
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("provider") {
		cfg.LLM.Provider = runProvider
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}

func runApplyCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config and apply CLI overrides
	cfg, err := config.LoadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyRunOverrides(cmd, cfg)
	if cfg.Verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
	}

	// Step 1: Profile, selectors, blacklist and secrets
	fmt.Println(stepLine(1))
	bundle, err := config.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	resumePath, err := config.AbsPath(cfg.ResumePath)
	if err != nil {
		return err
	}
	coverLetterPath, err := config.AbsPath(cfg.CoverLetterPath)
	if err != nil {
		return err
	}
	policies, err := policiesFrom(cfg.Policies)
	if err != nil {
		return err
	}
	policies.ResumePath = resumePath
	policies.CoverLetterPath = coverLetterPath

	// Step 2: Answer sources
	fmt.Println(stepLine(2))
	client, err := newLLMClient(ctx, cfg, bundle.Secrets)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	generative, err := answer.NewGenerative(client, bundle.Profile)
	if err != nil {
		return fmt.Errorf("failed to prepare answer prompts: %w", err)
	}
	generative.Verbose = cfg.Verbose
	source := answer.NewChain(answer.NewDirectLookup(bundle.Profile, cfg.Answers), generative)

	// Step 3: Outcome logs and attempt store
	fmt.Println(stepLine(3))
	store, err := db.Open(ctx, cfg.DatabaseURL, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open attempt store: %w", err)
	}
	defer func() { _ = store.Close() }()

	logs, err := outcome.NewFileWriter(filepath.Join(cfg.DataDir, "logs"), time.Now())
	if err != nil {
		return err
	}

	// Step 4: Browser session
	fmt.Println(stepLine(4))
	lock, err := browser.LockProfile(cfg.Browser.ProfileDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	chrome, err := browser.NewChrome(ctx, browser.ChromeOptions{
		ProfileDir:    cfg.Browser.ProfileDir,
		Headless:      cfg.Browser.Headless,
		UserAgent:     cfg.Browser.UserAgent,
		ActionTimeout: cfg.Browser.ActionTimeout,
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer chrome.Close()

	settle := pacing.Settle{Min: cfg.Pacing.SettleMin, Max: cfg.Pacing.SettleMax}
	walker := form.NewWalker(chrome, bundle.Selectors.Form, source, form.WalkerOptions{
		Policies:    policies,
		WaitTimeout: cfg.Browser.WaitTimeout,
		MaxPages:    cfg.Browser.MaxFormPages,
		Settle:      settle,
		Verbose:     cfg.Verbose,
	})

	orchestrator := apply.New(apply.Deps{
		Driver:    chrome,
		Selectors: bundle.Selectors,
		Walker:    walker,
		Blacklist: bundle.Blacklist,
		Recorder:  outcome.Multi{logs, store},
		Pacer:     pacing.NewPacer(cfg.Pacing.RequestsPerMinute, cfg.Pacing.MinDelay, cfg.Pacing.MaxDelay),
		Printer:   observability.NewPrinter(os.Stdout),
		Credentials: apply.Credentials{
			Email:    bundle.Secrets.SiteEmail,
			Password: bundle.Secrets.SitePassword,
		},
	}, apply.Options{
		SearchURLs:     cfg.Search.URLs,
		MaxResultPages: cfg.Search.MaxResultPages,
		ListRetries:    cfg.Search.ListRetries,
		ListRetryDelay: listRetryDelay,
		Settle:         settle,
		WaitTimeout:    cfg.Browser.WaitTimeout,
		ResumePath:     resumePath,
		Verbose:        cfg.Verbose,
	})

	// Step 5: Apply
	fmt.Printf("%s (%d search URL(s))...\n", stepLine(5), len(cfg.Search.URLs))
	stats, runErr := orchestrator.Run(ctx)

	fmt.Printf("\nSubmitted %d, failed %d, skipped %d of %d listings in %s\n",
		stats.Submitted, stats.Failed,
		stats.SkippedApplied+stats.SkippedBlacklisted+stats.SkippedNoQuickApply,
		stats.Listings, stats.Duration.Round(time.Second))
	fmt.Printf("Successful applications: %s\n", logs.SuccessPath())
	fmt.Printf("Failed applications:     %s\n", logs.FailedPath())

	if runErr != nil {
		return fmt.Errorf("run stopped: %w", runErr)
	}
	return nil
}

// policiesFrom parses the configured policy points.
func policiesFrom(c config.PolicyConfig) (form.Policies, error) {
	cardGroup, err := form.ParseCardGroupPolicy(c.CardGroup)
	if err != nil {
		return form.Policies{}, err
	}
	coverLetter, err := form.ParseCoverLetterPolicy(c.CoverLetter)
	if err != nil {
		return form.Policies{}, err
	}
	return form.Policies{CardGroup: cardGroup, CoverLetter: coverLetter}, nil
}

// llmConfigFrom turns the llm section of config.yaml into a client configuration.
// Configured models replace the provider defaults tier by tier.
func llmConfigFrom(c config.LLMConfig) (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return nil, err
	}
	lc := llm.ConfigFor(provider)
	for tier, model := range c.Models {
		switch t := llm.ModelTier(tier); t {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
			lc = lc.WithModel(t, model)
		default:
			return nil, fmt.Errorf("unknown model tier %q in llm.models", tier)
		}
	}
	if c.Temperature != nil {
		lc.Temperature = *c.Temperature
	}
	return lc, nil
}

func newLLMClient(ctx context.Context, cfg *config.AppConfig, secrets config.Secrets) (llm.Client, error) {
	lc, err := llmConfigFrom(cfg.LLM)
	if err != nil {
		return nil, err
	}

	creds := llm.Credentials{
		APIKey:   secrets.APIKeyFor(string(lc.Provider)),
		Project:  cfg.LLM.Project,
		Location: cfg.LLM.Location,
	}
	switch lc.Provider {
	case llm.ProviderGemini:
		if creds.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable or %q keychain secret is required", config.SecretGeminiAPIKey)
		}
	case llm.ProviderOpenAI:
		if creds.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable or %q keychain secret is required", config.SecretOpenAIAPIKey)
		}
	case llm.ProviderVertex:
		if creds.Project == "" || creds.Location == "" {
			return nil, fmt.Errorf("llm.project and llm.location are required for the vertex provider")
		}
	}

	client, err := llm.NewClient(ctx, lc, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}
