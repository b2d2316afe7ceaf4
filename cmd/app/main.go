package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/basetag/internal"
	"github.com/starford/basetag/internal/editor"
	"github.com/starford/basetag/internal/mcpserver"
	"github.com/starford/basetag/internal/settings"
	pkgconfig "github.com/starford/basetag/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// stderrLogger keeps stdout free for command output.
func stderrLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
}

// openCore loads the config and wires the plugin for one-shot commands.
func openCore(cmd *cli.Command) (*internal.Core, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.Open(cfg, stderrLogger(cfg))
}

func noteArg(cmd *cli.Command) (string, error) {
	name := cmd.Args().First()
	if name == "" {
		return "", fmt.Errorf("note path is required")
	}
	return name, nil
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

func render(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if out := cmd.String("out"); out != "" {
		cfg.Render.OutDir = out
	}
	return internal.Export(ctx,
		internal.WithConfig(cfg),
		internal.WithLogger(stderrLogger(cfg)),
		internal.WithWatch(cmd.Bool("watch")))
}

func preview(ctx context.Context, cmd *cli.Command) error {
	name, err := noteArg(cmd)
	if err != nil {
		return err
	}
	core, err := openCore(cmd)
	if err != nil {
		return err
	}
	defer core.Close()

	src, err := core.Service.Source(ctx, name)
	if err != nil {
		return err
	}
	frame := editor.Frame(core.Plugin, string(src), int(cmd.Int("cursor")), int(cmd.Int("height")), editor.DefaultStyles())
	_, err = fmt.Fprintln(os.Stdout, frame)
	return err
}

func edit(ctx context.Context, cmd *cli.Command) error {
	name, err := noteArg(cmd)
	if err != nil {
		return err
	}
	core, err := openCore(cmd)
	if err != nil {
		return err
	}
	defer core.Close()

	src, err := core.Service.Source(ctx, name)
	if err != nil {
		return err
	}
	m := editor.New(core.Plugin, name, string(src), editor.WithSave(func(text string) error {
		return core.Service.Save(ctx, name, []byte(text))
	}))
	_, err = tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	return err
}

func configureSettings(_ context.Context, cmd *cli.Command) error {
	core, err := openCore(cmd)
	if err != nil {
		return err
	}
	defer core.Close()

	current := core.Settings.Get()
	if cmd.IsSet("selectors") || cmd.IsSet("containers") {
		current, err = core.Settings.Update(func(s *settings.Settings) {
			if cmd.IsSet("selectors") {
				s.CustomTagSelectors = settings.ParseList(cmd.String("selectors"))
			}
			if cmd.IsSet("containers") {
				s.CustomTagContainerSelectors = settings.ParseList(cmd.String("containers"))
			}
		})
		if err != nil {
			return err
		}
	}
	out, err := yaml.Marshal(current)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	core, err := openCore(cmd)
	if err != nil {
		return err
	}
	defer core.Close()
	return mcpserver.New(core.Service, core.Settings).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:   "basetag",
		Usage:  "Show tag pills by their basename in rendered, panel, and editing views of a Markdown vault",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve reading views, the API, and live reload events",
				Action: serve,
			},
			{
				Name:   "render",
				Usage:  "Write the reading view of every note as HTML",
				Action: render,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output directory (overrides render.out_dir)"},
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Re-render notes as they change"},
				},
			},
			{
				Name:      "preview",
				Usage:     "Print one live preview frame of a note",
				ArgsUsage: "<note.md>",
				Action:    preview,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "cursor", Value: -1, Usage: "Cursor offset; negative means no cursor"},
					&cli.IntFlag{Name: "height", Usage: "Lines to draw; 0 draws all"},
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit a note with live preview pills",
				ArgsUsage: "<note.md>",
				Action:    edit,
			},
			{
				Name:   "settings",
				Usage:  "Show or change the custom selector lists",
				Action: configureSettings,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "selectors", Usage: "Comma-separated custom tag selectors"},
					&cli.StringFlag{Name: "containers", Usage: "Comma-separated custom tag container selectors"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve basetag tools over MCP stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
