package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/personhood/internal/app"
	"github.com/vncsmyrnk/personhood/internal/config"
)

var (
	application *app.App
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "pohctl",
	Short:         "Operate proof-of-personhood credentials and votes against the configured store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && verbose {
			log.Println("No .env file found")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logOut := io.Discard
		if verbose {
			logOut = os.Stderr
		}
		application, err = app.New(cmd.Context(), cfg, config.NewLogger(logOut, cfg.LogLevel))
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
