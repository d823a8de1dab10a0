package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/config"
	"github.com/wippyai/wasm-embedded/internal/wasmtest"
)

const gpioScript = `
[[ops]]
kind = "gpio_init"
port = 0
pin = 1
output = true
res = 0

[[ops]]
kind = "gpio_set"
handle = 0
state = "high"
res = 0
`

// testApp returns an app whose exit errors are returned, not exited on.
func testApp(out *bytes.Buffer) *cli.App {
	app := newApp()
	app.Writer = out
	app.ErrWriter = out
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func gpioGuest(state int32) []byte {
	g := wasmtest.New()
	initFn := g.Import(abi.ModuleGpio, abi.FuncInit, 4)
	set := g.Import(abi.ModuleGpio, abi.FuncSet, 2)
	g.Call(initFn, wasmtest.I32(0), wasmtest.I32(1), wasmtest.I32(1), wasmtest.I32(0x100))
	g.Call(set, wasmtest.Load(0x100), wasmtest.I32(state))
	return g.Encode()
}

func exitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}

func TestRun_Mock(t *testing.T) {
	script := writeFile(t, "ops.toml", []byte(gpioScript))
	guest := writeFile(t, "guest.wasm", gpioGuest(1))

	for _, adapter := range []string{config.AdapterLinker, config.AdapterCabi} {
		t.Run(adapter, func(t *testing.T) {
			var out bytes.Buffer
			err := testApp(&out).Run([]string{"wasme", "--log-level", "error",
				"run", "--adapter", adapter, "--mock", script, guest})
			if err != nil {
				t.Fatalf("run: %v\n%s", err, out.String())
			}
		})
	}
}

func TestRun_MismatchExitCode(t *testing.T) {
	script := writeFile(t, "ops.toml", []byte(gpioScript))
	guest := writeFile(t, "guest.wasm", gpioGuest(0))

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"wasme", "--log-level", "error", "run", "--mock", script, guest})
	if exitCode(err) != exitMismatch {
		t.Fatalf("run = %v, want exit %d", err, exitMismatch)
	}
}

func TestRun_TrapExitCode(t *testing.T) {
	script := writeFile(t, "ops.toml", []byte(""))
	g := wasmtest.New()
	g.Unreachable()
	guest := writeFile(t, "guest.wasm", g.Encode())

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"wasme", "--log-level", "error", "run", "--mock", script, guest})
	if exitCode(err) != exitTrapped {
		t.Fatalf("run = %v, want exit %d", err, exitTrapped)
	}
}

func TestRun_UnconsumedScriptFails(t *testing.T) {
	script := writeFile(t, "ops.toml", []byte(gpioScript))
	guest := writeFile(t, "guest.wasm", wasmtest.New().Encode())

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"wasme", "--log-level", "error", "run", "--mock", script, guest})
	if err == nil || !strings.Contains(err.Error(), "gpio_init") {
		t.Fatalf("run = %v, want missing-call mismatch", err)
	}
}

func TestCheck(t *testing.T) {
	script := writeFile(t, "ops.toml", []byte(gpioScript))

	var out bytes.Buffer
	if err := testApp(&out).Run([]string{"wasme", "check", script}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "gpio_set") || !strings.Contains(out.String(), "2 operations") {
		t.Errorf("check output:\n%s", out.String())
	}

	out.Reset()
	if err := testApp(&out).Run([]string{"wasme", "check", "--encode", script}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `kind = "gpio_init"`) {
		t.Errorf("encoded output:\n%s", out.String())
	}

	bad := writeFile(t, "bad.toml", []byte("[[ops]]\nkind = \"gpio_toggle\"\n"))
	if err := testApp(&out).Run([]string{"wasme", "check", bad}); err == nil {
		t.Error("check should reject an unknown kind")
	}
}

func TestLoadConfig_FileAndFlags(t *testing.T) {
	cfgPath := writeFile(t, "wasme.toml", []byte("adapter = \"cabi\"\n[log]\nlevel = \"warn\"\n"))
	script := writeFile(t, "ops.toml", []byte(gpioScript))

	var got config.Config
	app := testApp(&bytes.Buffer{})
	app.Commands = []*cli.Command{{
		Name:  "probe",
		Flags: backendFlags(),
		Action: func(c *cli.Context) error {
			var err error
			got, err = loadConfig(c)
			return err
		},
	}}
	err := app.Run([]string{"wasme", "--config", cfgPath, "--log-format", "json", "probe", "--mock", script})
	if err != nil {
		t.Fatal(err)
	}
	if got.Adapter != config.AdapterCabi || got.Log.Level != "warn" || got.Log.Format != config.FormatJSON {
		t.Errorf("config = %+v", got)
	}
	if got.Backend != config.BackendMock || got.Mock != script {
		t.Errorf("--mock should select the mock backend: %+v", got)
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{config.FormatConsole, config.FormatJSON} {
		l, err := newLogger(config.Log{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		l.Sync()
	}
	if _, err := newLogger(config.Log{Level: "verbose"}); err == nil {
		t.Error("unknown level should fail")
	}
}
