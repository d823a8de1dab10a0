package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wippyai/wasm-embedded/mock"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "validate a mock expectation script and print its operations",
		ArgsUsage: "<script.toml>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "encode",
				Usage: "print the script re-encoded as TOML instead of a listing",
			},
		},
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: wasme check <script.toml>", 1)
	}
	script, err := mock.Load(c.Args().First())
	if err != nil {
		return err
	}

	w := c.App.Writer
	if c.Bool("encode") {
		return script.Encode(w)
	}
	for i, op := range script.Ops {
		fmt.Fprintf(w, "%4d  %s\n", i, op)
	}
	fmt.Fprintf(w, "%d operations\n", len(script.Ops))
	return nil
}
