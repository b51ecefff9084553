package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/scenecast/internal/api"
	"github.com/scenecast/internal/bus"
	"github.com/scenecast/internal/comments/postgres"
	"github.com/scenecast/internal/config"
	"github.com/scenecast/internal/database"
	"github.com/scenecast/internal/logging"
)

// ServeCommand returns the CLI command for starting the comment API server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the SceneCast comment API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Pretty)

			port := cfg.Server.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			db, err := database.NewDB(cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("comment database unavailable: %w", err)
			}
			defer db.Close()

			repo := postgres.NewRepository(db)
			if err := repo.EnsureSchema(context.Background()); err != nil {
				return err
			}

			log.Info().Int("port", port).Msg("starting comment API server")
			server := api.NewServer(port, repo, bus.New(), cfg.Server.JWTSecret)
			return server.Start()
		},
	}
}
