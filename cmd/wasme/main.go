// Command wasme runs WebAssembly guests against peripheral backends.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "load runtime configuration from TOML `file`",
			EnvVars: []string{"WASME_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "set logging `level` to debug, info, warn or error",
			EnvVars: []string{"WASME_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "`format` logs as console or json",
			EnvVars: []string{"WASME_LOG_FORMAT"},
		},
	}
}

// backendFlags select and configure the peripheral backend.
func backendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "serve capabilities from `name`: linux or mock",
		},
		&cli.PathFlag{
			Name:  "mock",
			Usage: "replay and verify the expectation script in `file`",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "wasme",
		Usage:     "peripheral host bindings for WebAssembly guests",
		UsageText: "wasme [global options] command [command options] [arguments...]",
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			runCommand(),
			checkCommand(),
			consoleCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
