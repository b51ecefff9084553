package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/scenecast/internal/config"
	"github.com/scenecast/internal/identity"
)

// AuthorCommand returns the CLI command for inspecting and renaming the
// locally stored comment author identity.
func AuthorCommand() *cli.Command {
	return &cli.Command{
		Name:  "author",
		Usage: "Show or update the local comment author identity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Set the author display name",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}

			store, err := identity.Open(cfg.Storage.Dir)
			if err != nil {
				return err
			}
			defer store.Close()

			author := store.Current()
			if name := c.String("name"); name != "" {
				author, err = store.SetName(name)
				if err != nil {
					return err
				}
			}

			fmt.Printf("ID:       %s\n", author.ID)
			fmt.Printf("Name:     %s\n", author.Name)
			fmt.Printf("Initials: %s\n", author.Initials)
			fmt.Printf("Accent:   %s\n", author.AccentColor)
			return nil
		},
	}
}
