package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-embedded/engine"
	"github.com/wippyai/wasm-embedded/mock"
)

// Exit codes of the run command.
const (
	exitTrapped  = 2
	exitMismatch = 3
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "execute a guest module against a peripheral backend",
		ArgsUsage: "<guest.wasm> [guest args...]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "adapter",
				Aliases: []string{"a"},
				Usage:   "bind imports with `name`: linker or cabi",
			},
			&cli.StringFlag{
				Name:    "entry",
				Aliases: []string{"e"},
				Usage:   "call the exported `function`",
			},
			&cli.UintFlag{
				Name:  "memory-limit",
				Usage: "cap guest memory at `pages` of 64KiB",
			},
		}, backendFlags()...),
		Action: runAction,
	}
}

func runAction(c *cli.Context) (err error) {
	if c.NArg() < 1 {
		return cli.Exit("usage: wasme run [options] <guest.wasm>", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("memory-limit") {
		cfg.Engine.MemoryLimitPages = uint32(c.Uint("memory-limit"))
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()
	installLogger(log)

	path := c.Args().First()
	wasm, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read guest: %w", err)
	}

	args := append([]string{path}, cfg.Engine.Args...)
	args = append(args, c.Args().Tail()...)

	ctx := c.Context
	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	// Closing a mock backend verifies the script; a run that already
	// failed reports that failure alone.
	defer func() {
		if cerr := backend.Close(); err == nil {
			err = cerr
		}
	}()

	eng, err := engine.New(ctx, &engine.Config{
		Stdout:           c.App.Writer,
		Stderr:           c.App.ErrWriter,
		Stdin:            c.App.Reader,
		Args:             args,
		MemoryLimitPages: cfg.Engine.MemoryLimitPages,
		DisableWASI:      cfg.Engine.DisableWASI,
	})
	if err != nil {
		return err
	}
	defer eng.Close(ctx)

	s, err := eng.NewSession(ctx, wasm)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	binder, release, err := newBinder(cfg, backend.Engine())
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(release))

	if err := s.Bind(ctx, binder); err != nil {
		return err
	}

	log.Info("running guest",
		zap.String("guest", path),
		zap.String("backend", cfg.Backend),
		zap.String("adapter", cfg.Adapter))

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		m, ok := r.(*mock.ExpectationMismatch)
		if !ok {
			panic(r)
		}
		err = cli.Exit(m.Error(), exitMismatch)
	}()

	runErr := s.Run(ctx, cfg.Engine.Entry)
	log.Info("guest finished", zap.Stringer("state", s.State()))

	var trap *engine.Trap
	if stderrors.As(runErr, &trap) {
		return cli.Exit(trap.Error(), exitTrapped)
	}
	return runErr
}
