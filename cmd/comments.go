package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/scenecast/internal/comments"
	"github.com/scenecast/internal/comments/httpremote"
	"github.com/scenecast/internal/comments/postgres"
	"github.com/scenecast/internal/config"
	"github.com/scenecast/internal/database"
	"github.com/scenecast/internal/identity"
)

// CommentsCommand returns the CLI command for working with stored
// comment threads directly, against either a SceneCast API or Postgres.
func CommentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "comments",
		Usage: "Inspect and manage stored comment threads",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List comment threads, optionally filtered by scene",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scene", Usage: "Only threads anchored to this scene"},
				},
				Action: func(c *cli.Context) error {
					cfg, remote, cleanup, err := openRemote(c)
					if err != nil {
						return err
					}
					defer cleanup()

					threads, err := remote.ListThreads(c.Context, cfg.Comments.Namespace)
					if err != nil {
						return err
					}

					scene := c.String("scene")
					for _, t := range threads {
						if scene != "" && t.SceneID != qualifyScene(cfg.Comments.Namespace, scene) {
							continue
						}
						fmt.Printf("%s  [%s]  %s  %s: %s (%d replies)\n",
							t.ID, t.Status, t.SceneID, t.Author.Name, t.Message, len(t.Replies))
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Create a comment thread on a scene",
				ArgsUsage: "MESSAGE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scene", Usage: "Scene the thread is anchored to", Required: true},
					&cli.StringFlag{Name: "element", Usage: "Element id within the scene"},
				},
				Action: func(c *cli.Context) error {
					message := c.Args().First()
					if !comments.ValidMessage(message) {
						return fmt.Errorf("message must be non-empty and at most %d characters", comments.MaxMessageLen)
					}

					cfg, remote, cleanup, err := openRemote(c)
					if err != nil {
						return err
					}
					defer cleanup()

					store, err := identity.Open(cfg.Storage.Dir)
					if err != nil {
						return err
					}
					defer store.Close()

					now := time.Now().UTC()
					t := comments.Thread{
						ID:        uuid.NewString(),
						SceneID:   qualifyScene(cfg.Comments.Namespace, c.String("scene")),
						ElementID: c.String("element"),
						Message:   message,
						Author:    store.Current(),
						Status:    comments.StatusOpen,
						Replies:   []comments.Reply{},
						CreatedAt: now,
						UpdatedAt: now,
					}
					if err := remote.InsertThread(c.Context, t); err != nil {
						return err
					}
					fmt.Println(t.ID)
					return nil
				},
			},
			{
				Name:      "resolve",
				Usage:     "Mark a comment thread resolved",
				ArgsUsage: "THREAD_ID",
				Action: func(c *cli.Context) error {
					return setStatus(c, comments.StatusResolved)
				},
			},
			{
				Name:      "reopen",
				Usage:     "Reopen a resolved comment thread",
				ArgsUsage: "THREAD_ID",
				Action: func(c *cli.Context) error {
					return setStatus(c, comments.StatusOpen)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a comment thread and its replies",
				ArgsUsage: "THREAD_ID",
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if id == "" {
						return fmt.Errorf("thread id required")
					}
					_, remote, cleanup, err := openRemote(c)
					if err != nil {
						return err
					}
					defer cleanup()
					return remote.DeleteThread(c.Context, id)
				},
			},
		},
	}
}

func setStatus(c *cli.Context, status comments.Status) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("thread id required")
	}
	_, remote, cleanup, err := openRemote(c)
	if err != nil {
		return err
	}
	defer cleanup()
	return remote.UpdateThreadStatus(c.Context, id, status)
}

// openRemote picks the persistence backend from configuration: a running
// SceneCast API when remote_base_url is set, otherwise Postgres.
func openRemote(c *cli.Context) (*config.Config, comments.Remote, func(), error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.Comments.RemoteBaseURL != "" {
		client := httpremote.NewClient(cfg.Comments.RemoteBaseURL, cfg.Comments.RemoteToken)
		return cfg, client, func() {}, nil
	}

	if !database.Configured(cfg.Database.URL) {
		return nil, nil, nil, fmt.Errorf("no comment backend configured: set comments.remote_base_url or database.url")
	}
	db, err := database.NewDB(cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	repo := postgres.NewRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return cfg, repo, func() { db.Close() }, nil
}

func qualifyScene(namespace, sceneID string) string {
	if namespace == "" {
		return sceneID
	}
	return namespace + "/" + sceneID
}
