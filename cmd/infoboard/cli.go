package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/infoboard/internal/config"
	"github.com/hpungsan/infoboard/internal/discord"
	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/mcp"
	"github.com/hpungsan/infoboard/internal/notes"
	"github.com/hpungsan/infoboard/internal/repo"
	"github.com/hpungsan/infoboard/internal/store"
	"github.com/hpungsan/infoboard/internal/syncer"
	"github.com/hpungsan/infoboard/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(baseDir string) *cli.App {
	app := &cli.App{
		Name:    "infoboard",
		Usage:   "Managed info channels for Discord servers",
		Version: Version,
		Commands: []*cli.Command{
			runCmd(baseDir),
			webCmd(baseDir),
			mcpCmd(baseDir),
			serversCmd(baseDir),
			sectionsCmd(baseDir),
			showCmd(baseDir),
			renderCmd(baseDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// env bundles the opened database and the services built on it.
type env struct {
	db    *sql.DB
	cfg   *config.Config
	mgr   *store.Manager
	notes *notes.Service
}

// openEnv initializes the database under baseDir, loads configuration,
// and loads every persisted server into memory.
func openEnv(ctx context.Context, baseDir string) (*env, error) {
	database, err := repo.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cfg.DBMaxOpenConns > 0 {
		database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}

	r := repo.New(database)
	mgr := store.NewManager(r)
	if err := mgr.LoadAll(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("loading servers: %w", err)
	}

	return &env{
		db:    database,
		cfg:   cfg,
		mgr:   mgr,
		notes: notes.NewService(r),
	}, nil
}

func (e *env) close() {
	e.db.Close()
}

// runCmd creates the run command, the gateway bot itself.
func runCmd(baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Connect to the gateway and serve commands until interrupted",
		Action: func(c *cli.Context) error {
			e, err := openEnv(c.Context, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer e.close()

			if e.cfg.Token == "" {
				return outputError(errors.NewValidation("no bot token configured; set token in config.json or INFOBOARD_TOKEN"))
			}

			bot, err := discord.NewBot(e.cfg.Token)
			if err != nil {
				return outputError(err)
			}

			delay := syncer.DefaultMessageDelay
			if e.cfg.MessageDelayMS > 0 {
				delay = time.Duration(e.cfg.MessageDelayMS) * time.Millisecond
			}

			syn := syncer.NewWithDelay(discord.NewTransport(bot.Session()), delay)
			bot.SetDispatcher(discord.NewDispatcher(e.mgr, e.notes, syn, bot.Session()))

			if err := bot.Open(); err != nil {
				return outputError(err)
			}
			defer bot.Close()

			if e.cfg.LogChannelID != "" {
				writer := discord.NewChannelWriter(bot.Session(), e.cfg.LogChannelID)
				log.SetOutput(io.MultiWriter(os.Stderr, writer))
			}

			log.Printf("infoboard %s connected, %d servers loaded", Version, len(e.mgr.ServerIDs()))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Println("Shutting down...")
			return nil
		},
	}
}

// webCmd creates the web command, the read-only section preview.
func webCmd(baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the section preview UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Bind address (default: config web_host)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default: config web_port)"},
		},
		Action: func(c *cli.Context) error {
			e, err := openEnv(c.Context, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer e.close()

			bind := c.String("bind")
			if bind == "" {
				bind = e.cfg.WebHost
			}
			port := c.Int("port")
			if port == 0 {
				port = e.cfg.WebPort
			}

			srv := web.NewServer(e.mgr, e.notes, Version, bind, port)
			return web.Run(srv)
		},
	}
}

// mcpCmd creates the mcp command, the stdio tool server.
func mcpCmd(baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the section tools over MCP stdio",
		Action: func(c *cli.Context) error {
			e, err := openEnv(c.Context, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer e.close()

			for _, name := range mcp.ValidateDisabledTools(e.cfg.DisabledTools) {
				log.Printf("warning: unknown disabled tool %q", name)
			}

			return mcp.Run(e.mgr, e.cfg, Version)
		},
	}
}

// serversCmd creates the servers command.
func serversCmd(baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "servers",
		Usage: "List known servers",
		Action: func(c *cli.Context) error {
			e, err := openEnv(c.Context, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer e.close()

			type serverInfo struct {
				ID           string `json:"id"`
				SectionCount int    `json:"section_count"`
				Prefix       string `json:"command_prefix"`
				InfoChannel  string `json:"info_channel,omitempty"`
				NotesChannel string `json:"notes_channel,omitempty"`
			}

			servers := make([]serverInfo, 0)
			for _, id := range e.mgr.ServerIDs() {
				st, ok := e.mgr.Get(id)
				if !ok {
					continue
				}
				servers = append(servers, serverInfo{
					ID:           id,
					SectionCount: len(st.Sections()),
					Prefix:       st.CommandPrefix(),
					InfoChannel:  st.InfoChannel(),
					NotesChannel: st.NotesChannel(),
				})
			}

			return outputJSON(map[string]any{"servers": servers})
		},
	}
}

// sectionsCmd creates the sections command.
func sectionsCmd(baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "sections",
		Usage:     "List a server's sections in display order",
		ArgsUsage: "<server-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewValidation("server-id argument is required"))
			}

			e, err := openEnv(c.Context, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer e.close()

			st, ok := e.mgr.Get(c.Args().First())
			if !ok {
				return outputError(errors.NewNotFound(c.Args().First()))
			}

			type sectionInfo struct {
				Name string `json:"name"`
				Type string `json:"type"`
			}

			entries := st.Sections()
			sections := make([]sectionInfo, 0, len(entries))
			for _, entry := range entries {
				sections = append(sections, sectionInfo{Name: entry.Name, Type: entry.Section.Type()})
			}

			return outputJSON(map[string]any{"sections": sections})
		},
	}
}

// showCmd creates the show command.
func showCmd(baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a section's payload and recreation transcript",
		ArgsUsage: "<server-id> <section-name>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewValidation("server-id and section-name arguments are required"))
			}

			e, err := openEnv(c.Context, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer e.close()

			st, ok := e.mgr.Get(c.Args().Get(0))
			if !ok {
				return outputError(errors.NewNotFound(c.Args().Get(0)))
			}

			sec, err := st.GetSection(c.Args().Get(1))
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"name":       sec.Name(),
				"type":       sec.Type(),
				"payload":    sec.ToDict(),
				"transcript": sec.Show(),
			})
		},
	}
}

// renderCmd creates the render command.
func renderCmd(baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a section into the messages publishing would send",
		ArgsUsage: "<server-id> <section-name>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewValidation("server-id and section-name arguments are required"))
			}

			e, err := openEnv(c.Context, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer e.close()

			st, ok := e.mgr.Get(c.Args().Get(0))
			if !ok {
				return outputError(errors.NewNotFound(c.Args().Get(0)))
			}

			sec, err := st.GetSection(c.Args().Get(1))
			if err != nil {
				return outputError(err)
			}

			paragraphs, err := sec.Render(c.Context)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"name":       sec.Name(),
				"header":     sec.Header(),
				"paragraphs": paragraphs,
				"footer":     sec.Footer(),
			})
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if bErr, ok := err.(*errors.BoardError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", bErr.Code, bErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
