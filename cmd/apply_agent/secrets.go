package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/quick-apply/internal/config"
)

var secretsCommand = &cobra.Command{
	Use:   "secrets",
	Short: "Manage site credentials and API keys in the OS keychain",
	Long: `Secrets are looked up in the environment first (SITE_EMAIL, SITE_PASSWORD, GEMINI_API_KEY,
OPENAI_API_KEY), then in the OS keychain. These commands manage the keychain entries.`,
}

var secretValue string

var secretsSetCommand = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a secret (value from --value or the first line of stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := secretValue
		if !cmd.Flags().Changed("value") {
			fmt.Fprintf(cmd.ErrOrStderr(), "Enter value for %s: ", args[0])
			line, err := readSecretLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			value = line
		}
		if err := config.SetSecret(args[0], value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", args[0])
		return nil
	},
}

var secretsDeleteCommand = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a secret from the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteSecret(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var secretsListCommand = &cobra.Command{
	Use:   "list",
	Short: "Show which secrets are set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range config.SecretNames() {
			state := "not set"
			if config.GetSecret(name) != "" {
				state = "set"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", name, state)
		}
		return nil
	},
}

func init() {
	secretsSetCommand.Flags().StringVar(&secretValue, "value", "", "Secret value (read from stdin when omitted)")

	secretsCommand.AddCommand(secretsSetCommand, secretsDeleteCommand, secretsListCommand)
	rootCmd.AddCommand(secretsCommand)
}

// readSecretLine returns the first line of r without its line ending.
func readSecretLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no secret value given")
	}
	return line, nil
}
