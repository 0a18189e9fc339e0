package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GTDGit/shopizi/internal/utils"
)

var tokenFlags struct {
	userID int
	email  string
	ttl    time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin bearer token signed with JWT_SECRET",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().IntVar(&tokenFlags.userID, "user-id", 1, "admin user id carried in the token")
	tokenCmd.Flags().StringVar(&tokenFlags.email, "email", "", "admin email carried in the token")
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireJWT(); err != nil {
		return err
	}
	if tokenFlags.ttl <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}
	token, err := utils.GenerateJWT(tokenFlags.userID, tokenFlags.email, cfg.JWTSecret, tokenFlags.ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
