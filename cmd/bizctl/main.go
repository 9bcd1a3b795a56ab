package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bizdir/internal/client"
	"bizdir/internal/config"
	"bizdir/internal/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL string
	token     string
	timeout   time.Duration
	verbose   bool
)

// rootCmd is the operator CLI of the directory API
var rootCmd = &cobra.Command{
	Use:   "bizctl",
	Short: "Operate a bizdir server",
	Long: `bizctl talks to a running bizdir API.

Available commands:
  token   - Issue an admin bearer token from JWT_SECRET
  import  - Upload a CSV of businesses
  export  - Download businesses or users as CSV
  likes   - Inspect and toggle likes, keep a local like cache`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		_, err := logging.New(level, "dev")
		return err
	},
}

func newClient() *client.Client {
	return client.New(serverURL, client.WithToken(token))
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func main() {
	defaultServer := "http://localhost:8080"
	if cfg, err := config.Load(); err == nil && cfg.HTTPAddr != "" && cfg.HTTPAddr[0] == ':' {
		defaultServer = "http://localhost" + cfg.HTTPAddr
	}

	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("BIZDIR_TOKEN"), "Admin bearer token (or set BIZDIR_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(likesCmd)

	if err := rootCmd.Execute(); err != nil {
		zap.S().Debugw("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
