package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/tagnote/internal"
	"github.com/starford/tagnote/internal/export"
	"github.com/starford/tagnote/internal/mcpserver"
	"github.com/starford/tagnote/internal/noteservice"
	"github.com/starford/tagnote/internal/notestore"
	"github.com/starford/tagnote/internal/storage"
	pkgconfig "github.com/starford/tagnote/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadWithDefaults(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// withApp opens the store for a one-shot command. Logs go to stderr so
// stdout carries only the command's output.
func withApp(cmd *cli.Command, fn func(app *internal.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	app, err := internal.Open(internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *internal.App) error {
		return mcpserver.New(app.Service).ServeStdio()
	})
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	return withApp(cmd, func(app *internal.App) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
		dst, err := storage.NewFS(dir)
		if err != nil {
			return err
		}
		n, err := export.Run(ctx, app.Store, dst)
		if err != nil {
			return err
		}
		fmt.Printf("exported %d notes to %s\n", n, dir)
		return nil
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func noteIDArg(cmd *cli.Command) (int64, error) {
	raw := cmd.Args().First()
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("expected a note id, got %q", raw)
	}
	return id, nil
}

func notesCommand() *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Manage notes",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a note",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Note title", Required: true},
					&cli.StringFlag{Name: "text", Usage: "Note body"},
					&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, defaults to today"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tag names"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						out, err := app.Service.CreateNote(ctx, noteservice.NoteInput{
							Title: cmd.String("title"),
							Text:  cmd.String("text"),
							Date:  cmd.String("date"),
							Tags:  notestore.SplitTagNames(cmd.String("tags")),
						})
						if err != nil {
							return err
						}
						return printJSON(out)
					})
				},
			},
			{
				Name:  "list",
				Usage: "List notes",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tag", Usage: "Only notes carrying this tag"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						notes, err := app.Service.ListNotes(ctx, cmd.String("tag"))
						if err != nil {
							return err
						}
						return printJSON(notes)
					})
				},
			},
			{
				Name:      "search",
				Usage:     "Search note titles and text",
				ArgsUsage: "<words...>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					query := strings.Join(cmd.Args().Slice(), " ")
					return withApp(cmd, func(app *internal.App) error {
						notes, err := app.Service.SearchNotes(ctx, query, 0)
						if err != nil {
							return err
						}
						return printJSON(notes)
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Print one note",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := noteIDArg(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						note, err := app.Service.GetNote(ctx, id)
						if err != nil {
							return err
						}
						return printJSON(note)
					})
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a note",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := noteIDArg(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						return app.Service.DeleteNote(ctx, id)
					})
				},
			},
		},
	}
}

func tagsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List, rename and delete tags",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tags with note counts",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						tags, err := app.Service.ListTags(ctx)
						if err != nil {
							return err
						}
						for _, t := range tags {
							fmt.Printf("%s\t%d\n", t.Name, t.Notes)
						}
						return nil
					})
				},
			},
			{
				Name:      "rename",
				Usage:     "Rename a tag, keeping every note's link",
				ArgsUsage: "<old> <new>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("expected <old> <new>")
					}
					return withApp(cmd, func(app *internal.App) error {
						return app.Service.RenameTag(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a tag and unlink it from every note",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected <name>")
					}
					return withApp(cmd, func(app *internal.App) error {
						return app.Service.DeleteTag(ctx, cmd.Args().First())
					})
				},
			},
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "tagnote",
		Usage:  "Tagged note store with an HTTP API, MCP tools and a Markdown inbox",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (built-in defaults when missing)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream and inbox importer (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: runMCP,
			},
			{
				Name:  "export",
				Usage: "Write every note as Markdown into a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "Target directory", Required: true},
				},
				Action: runExport,
			},
			notesCommand(),
			tagsCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
