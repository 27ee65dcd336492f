package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/layer-3/seedvault/adapters/store"
	"github.com/layer-3/seedvault/core"
	"github.com/spf13/cobra"
)

var nonceCmd = &cobra.Command{
	Use:   "nonce",
	Short: "Print a freshly generated nonce",
	RunE: func(cmd *cobra.Command, args []string) error {
		nonce, err := store.NewMemoryNonceStore().Generate(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), nonce)
		return nil
	},
}

var (
	tokenUserID    string
	tokenNullifier string
	tokenLevel     string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			return errors.New("refusing to issue tokens in production")
		}

		tok, err := newTokenizer(cfg, logger)
		if err != nil {
			return err
		}

		userID := tokenUserID
		if userID == "" {
			userID = uuid.NewString()
		}
		token, err := tok.Issue(core.Identity{
			UserID:        userID,
			NullifierHash: tokenNullifier,
			Level:         core.VerificationLevel(tokenLevel),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User id claim (random when empty)")
	tokenCmd.Flags().StringVar(&tokenNullifier, "nullifier", "", "Nullifier hash claim")
	tokenCmd.Flags().StringVar(&tokenLevel, "level", string(core.VerificationOrb), "Verification level (orb or device)")
	_ = tokenCmd.MarkFlagRequired("nullifier")
}
