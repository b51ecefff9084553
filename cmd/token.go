package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/scenecast/internal/api"
	"github.com/scenecast/internal/config"
	"github.com/scenecast/internal/identity"
)

// TokenCommand returns the CLI command for minting API bearer tokens
// for the locally stored author identity.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint an API bearer token for the local author",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if cfg.Server.JWTSecret == "" {
				return fmt.Errorf("no jwt_secret configured, the API accepts unauthenticated requests")
			}

			store, err := identity.Open(cfg.Storage.Dir)
			if err != nil {
				return err
			}
			defer store.Close()

			author := store.Current()
			token, err := api.IssueToken(cfg.Server.JWTSecret, author.ID, author.Name)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}
}
