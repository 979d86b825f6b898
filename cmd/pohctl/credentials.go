package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(issueCmd, revokeCmd, verifyCmd, resolveCmd, historyCmd, listCmd)
}

var issueCmd = &cobra.Command{
	Use:   "issue <address>",
	Short: "Issue a credential to an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		credential, err := application.Credentials.Issue(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, credential)
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <address>",
	Short: "Revoke the active credential of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		credential, err := application.Credentials.Revoke(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, credential)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <address>",
	Short: "Report whether an address holds an active credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := application.Credentials.Verify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]any{"address": args[0], "verified": ok})
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "Print the authoritative credential record of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		credential, err := application.Credentials.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if credential == nil {
			return fmt.Errorf("no credential for %s", args[0])
		}
		return printJSON(cmd, credential)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <address>",
	Short: "Print every credential record of an address, authoritative first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := application.Credentials.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, history)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the authoritative credential of every address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		credentials, err := application.Credentials.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, credentials)
	},
}
