package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/quick-apply/internal/answer"
	"github.com/jonathan/quick-apply/internal/config"
	"github.com/jonathan/quick-apply/internal/llm"
	"github.com/jonathan/quick-apply/internal/prompts"
)

var checkConfigCommand = &cobra.Command{
	Use:   "check-config",
	Short: "Load config.yaml, the profile, selectors and blacklist, and report what would be used",
	Long: `Runs the same startup loading as "run" without opening a browser: the config is validated,
the profile is checked against its schema, and the selectors, blacklist and secrets are resolved.`,
	RunE: runCheckConfig,
}

var checkConfigPath string

func init() {
	checkConfigCommand.Flags().StringVar(&checkConfigPath, "config", "config.yaml", "Path to config.yaml")
	rootCmd.AddCommand(checkConfigCommand)
}

func runCheckConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(checkConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	bundle, err := config.Bootstrap(context.Background(), cfg)
	if err != nil {
		return err
	}
	if _, err := policiesFrom(cfg.Policies); err != nil {
		return err
	}
	lc, err := llmConfigFrom(cfg.LLM)
	if err != nil {
		return err
	}
	promptLine, err := promptSummary(cfg.PromptsPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := bundle.Profile.Personal
	rule := bundle.Blacklist.Current()
	fmt.Fprintf(out, "Profile:      %s %s (%s)\n", p.Name, p.Surname, cfg.ProfilePath)
	fmt.Fprintf(out, "Resume:       %s\n", cfg.ResumePath)
	fmt.Fprintf(out, "Searches:     %d URL(s), up to %d page(s) each\n", len(cfg.Search.URLs), cfg.Search.MaxResultPages)
	fmt.Fprintf(out, "Blacklist:    %d company(ies), %d title keyword(s)\n", len(rule.Companies), len(rule.TitleKeywords))
	fmt.Fprintf(out, "Policies:     card groups %s, cover letters %s\n", cfg.Policies.CardGroup, cfg.Policies.CoverLetter)
	fmt.Fprintf(out, "LLM:          %s (standard model %s)\n", lc.Provider, lc.GetModel(llm.TierStandard))
	fmt.Fprintf(out, "Prompts:      %s\n", promptLine)
	fmt.Fprintf(out, "Direct answers: %d\n", len(cfg.Answers))

	missing := 0
	for _, name := range config.SecretNames() {
		if config.GetSecret(name) == "" {
			missing++
		}
	}
	fmt.Fprintf(out, "Secrets:      %d of %d set (see 'apply_agent secrets list')\n", len(config.SecretNames())-missing, len(config.SecretNames()))
	fmt.Fprintln(out, "Configuration OK")
	return nil
}

// promptSummary names the answer prompt sets in effect and where they were loaded from.
func promptSummary(overridePath string) (string, error) {
	keys, err := prompts.List(answer.PromptFile)
	if err != nil {
		return "", fmt.Errorf("failed to list answer prompts: %w", err)
	}
	source := "built-in"
	if overridePath != "" {
		source = overridePath
	}
	return fmt.Sprintf("%s (%s)", strings.Join(keys, ", "), source), nil
}
