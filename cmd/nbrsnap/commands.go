package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"nbrsnap/internal/codec"
	"nbrsnap/internal/config"
	"nbrsnap/internal/domain"
	"nbrsnap/internal/ioc"
	"nbrsnap/internal/repository/sqlite"
	"nbrsnap/internal/service"
)

// collectApp is the object graph behind a one-shot collection
type collectApp struct {
	cfg    *config.Config
	svc    *service.SnapshotService
	logger *zap.Logger
}

func newCollectApp(cfg *config.Config, svc *service.SnapshotService, logger *zap.Logger) *collectApp {
	return &collectApp{cfg: cfg, svc: svc, logger: logger}
}

func baseOptions(c *cli.Context) ioc.Options {
	return ioc.Options{
		ConfigPath:  c.String("config"),
		Verbose:     c.Bool("verbose"),
		Interactive: readline.IsTerminal(int(os.Stdin.Fd())),
	}
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
}

func collectCommand() *cli.Command {
	return &cli.Command{
		Name:    "collect",
		Aliases: []string{"run"},
		Usage:   "poll every device in the inventory once and write a snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "inventory", Aliases: []string{"i"}, Usage: "inventory CSV path"},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "directory for the snapshot file"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "snapshot format: status|plain|yaml"},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "device login username"},
			&cli.StringFlag{Name: "password", Usage: "device login password (prefer NBRSNAP_PASSWORD or the prompt)"},
			&cli.BoolFlag{Name: "no-store", Usage: "skip the history database and graph export"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not print the neighbor table"},
		},
		Action: func(c *cli.Context) error {
			opts := baseOptions(c)
			opts.Inventory = c.String("inventory")
			opts.OutputDir = c.String("output-dir")
			opts.Format = c.String("format")
			opts.Username = c.String("username")
			opts.Password = c.String("password")
			opts.NoStore = c.Bool("no-store")
			opts.Quiet = c.Bool("quiet")

			ctx, cancel := signalContext(c)
			defer cancel()

			app, cleanup, err := InitCollectApp(ctx, opts)
			if err != nil {
				return fmt.Errorf("init collect failed: %w", err)
			}
			defer cleanup()

			res, err := app.svc.RunOnce(ctx)
			if res == nil {
				return err
			}

			if !app.cfg.Output.Quiet {
				if werr := codec.WriteConsole(res.Snapshot, os.Stdout); werr != nil {
					app.logger.Warn("failed to print snapshot", zap.Error(werr))
				}
			}
			if res.File != "" {
				fmt.Fprintf(os.Stdout, "Snapshot written to %s\n", res.File)
			}
			return err
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run scheduled collections and the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "inventory", Aliases: []string{"i"}, Usage: "inventory CSV path"},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "device login username"},
		},
		Action: func(c *cli.Context) error {
			opts := baseOptions(c)
			opts.Inventory = c.String("inventory")
			opts.Username = c.String("username")
			// Scheduled runs have nobody to answer a prompt
			opts.Interactive = false

			ctx, cancel := signalContext(c)
			defer cancel()

			srv, cleanup, err := InitServer(ctx, opts)
			if err != nil {
				return fmt.Errorf("init server failed: %w", err)
			}
			defer cleanup()

			return srv.Run(ctx)
		},
	}
}

func openHistory(c *cli.Context) (*sqlite.Repository, error) {
	cfg, err := ioc.InitConfig(baseOptions(c))
	if err != nil {
		return nil, err
	}
	return sqlite.New(cfg.Database.Path)
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list stored snapshots, or one device's results over time",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "maximum entries to list", Value: 20},
			&cli.StringFlag{Name: "device", Aliases: []string{"d"}, Usage: "show the history of one hostname"},
		},
		Action: func(c *cli.Context) error {
			repo, err := openHistory(c)
			if err != nil {
				return err
			}
			defer repo.Close()

			if host := c.String("device"); host != "" {
				entries, err := repo.DeviceHistory(c.Context, host, c.Int("limit"))
				if err != nil {
					return fmt.Errorf("failed to load history for %s: %w", host, err)
				}
				printDeviceHistory(entries)
				return nil
			}

			summaries, err := repo.ListSnapshots(c.Context, c.Int("limit"))
			if err != nil {
				return fmt.Errorf("failed to list snapshots: %w", err)
			}
			return codec.WriteSummaries(summaries, os.Stdout)
		},
	}
}

func printDeviceHistory(entries []domain.DeviceHistoryEntry) {
	for _, e := range entries {
		r := e.Result
		status := fmt.Sprintf("%d neighbors", len(r.Neighbors))
		if !r.Succeeded() && r.Error != nil {
			status = fmt.Sprintf("FAILED [%s] %s", r.Error.Kind, r.Error.Detail)
		}
		fmt.Fprintf(os.Stdout, "#%d  %s  %s\n", e.SnapshotID, e.TakenAt.Format("2006-01-02 15:04:05"), status)
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print a snapshot from a file or the history database",
		ArgsUsage: "<file|id|latest>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "table, or a snapshot format: status|plain|yaml", Value: "table"},
		},
		Action: func(c *cli.Context) error {
			target := c.Args().First()
			if target == "" {
				target = "latest"
			}

			snap, err := loadSnapshot(c, target)
			if err != nil {
				return err
			}

			if f := c.String("format"); f != "table" {
				exp, err := codec.ForFormat(f)
				if err != nil {
					return err
				}
				return exp.Export(snap, os.Stdout)
			}
			return codec.WriteConsole(snap, os.Stdout)
		},
	}
}

func loadSnapshot(c *cli.Context, target string) (*domain.Snapshot, error) {
	if _, err := os.Stat(target); err == nil {
		return codec.ReadFile(target)
	}

	repo, err := openHistory(c)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	if target == "latest" {
		return repo.LatestSnapshot(c.Context)
	}
	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return nil, errors.New("expected a snapshot file, an id or \"latest\"")
	}
	return repo.GetSnapshot(c.Context, id)
}
