package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rushbot/internal/pkg/jwt"
)

var tokenCmd = &cobra.Command{
	Use:   "token <client-id>",
	Short: "Mint a gateway client token",
	Long: `Mint a signed JWT that a transport client presents to the message
gateway. The signing secret is read from auth.jwt_secret.`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().Duration("expiry", 0, "token lifetime (default: auth.token_expiry)")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured")
	}

	expiry, _ := cmd.Flags().GetDuration("expiry")
	if expiry == 0 {
		expiry = cfg.Auth.TokenExpiry
	}
	if expiry == 0 {
		expiry = 30 * 24 * time.Hour
	}

	issuer := jwt.New(cfg.Auth.JWTSecret, expiry)
	token, err := issuer.GenerateToken(args[0])
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Println(token)
	return nil
}
