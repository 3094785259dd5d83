//go:generate go run -mod=mod github.com/google/wire/cmd/wire

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "nbrsnap",
		Usage:   "collect CDP/LLDP neighbor snapshots from network devices",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the config file",
				EnvVars: []string{"NBRSNAP_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			collectCommand(),
			serveCommand(),
			historyCommand(),
			showCommand(),
		},
		DefaultCommand: "collect",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "nbrsnap: %v\n", err)
		os.Exit(1)
	}
}
