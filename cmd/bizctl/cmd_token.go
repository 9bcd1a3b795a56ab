package main

import (
	"errors"
	"fmt"

	"bizdir/internal/config"
	jwtsvc "bizdir/internal/pkg/jwt"

	"github.com/spf13/cobra"
)

var tokenSubject string

// tokenCmd issues an admin token signed with the server's secret
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.AdminAuthEnabled() {
			return errors.New("JWT_SECRET is not set; admin routes are open")
		}

		tok, err := jwtsvc.New(cfg.JWTSecret, cfg.AdminTokenTTL).GenerateToken(tokenSubject, jwtsvc.RoleAdmin)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "bizctl", "Token subject")
}
