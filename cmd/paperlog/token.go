package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobinette/paperlog/errors"
	"github.com/bobinette/paperlog/jwt"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func init() {
	TokenCommand.Flags().StringVar(&tokenSubject, "subject", "paperlog", "subject of the token")
	TokenCommand.Flags().DurationVar(&tokenTTL, "ttl", jwt.DefaultTTL, "validity of the token")

	RootCmd.AddCommand(&TokenCommand)
}

var TokenCommand = cobra.Command{
	Use:   "token",
	Short: "Issue a token for the api",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.Key == "" {
			return errors.New("no key file configured in [auth]")
		}

		key, err := jwt.ReadKey(cfg.Auth.Key)
		if err != nil {
			return err
		}

		token, err := jwt.NewEncodeDecoder(key).Encode(tokenSubject, tokenTTL)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
