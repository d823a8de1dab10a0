package mock

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
)

// Config is an ordered expectation script.
type Config struct {
	Ops []Op
}

// Expected returns the scripted kinds in order.
func (c Config) Expected() []Kind {
	out := make([]Kind, len(c.Ops))
	for i, op := range c.Ops {
		out[i] = op.Kind
	}
	return out
}

// file mirrors the TOML layout: an array of [[ops]] tables, each tagged
// with its kind.
type file struct {
	Ops []rawOp `toml:"ops"`
}

type rawOp struct {
	State   *hal.PinState `toml:"state,omitempty"`
	Kind    string        `toml:"kind"`
	DataOut []int         `toml:"data_out,omitempty"`
	DataIn  []int         `toml:"data_in,omitempty"`
	Port    uint32        `toml:"port,omitempty"`
	Baud    uint32        `toml:"baud,omitempty"`
	Pin     uint32        `toml:"pin,omitempty"`
	Sda     int32         `toml:"sda,omitempty"`
	Scl     int32         `toml:"scl,omitempty"`
	Mosi    int32         `toml:"mosi,omitempty"`
	Miso    int32         `toml:"miso,omitempty"`
	Sck     int32         `toml:"sck,omitempty"`
	Cs      int32         `toml:"cs,omitempty"`
	Tx      int32         `toml:"tx,omitempty"`
	Rx      int32         `toml:"rx,omitempty"`
	Handle  int32         `toml:"handle,omitempty"`
	Flags   uint32        `toml:"flags,omitempty"`
	Res     *int32        `toml:"res"`
	Addr    uint16        `toml:"addr,omitempty"`
	Output  bool          `toml:"output,omitempty"`
}

// Load reads an expectation script from a TOML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Config("read mock script "+path, err)
	}
	Logger().Debug("loading mock script")
	return Parse(data)
}

// Parse decodes an expectation script.
func Parse(data []byte) (Config, error) {
	var f file
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
	if err != nil {
		return Config{}, errors.Config("parse mock script", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, errors.Config(fmt.Sprintf("unknown field %q in mock script", undec[0].String()), nil)
	}

	cfg := Config{Ops: make([]Op, 0, len(f.Ops))}
	for i, r := range f.Ops {
		op, err := r.op()
		if err != nil {
			return Config{}, errors.Config(fmt.Sprintf("ops[%d]", i), err)
		}
		cfg.Ops = append(cfg.Ops, op)
	}
	return cfg, nil
}

func (r rawOp) op() (Op, error) {
	t := OpType(r.Kind)
	if !t.valid() {
		return Op{}, fmt.Errorf("unknown kind %q", r.Kind)
	}
	out, err := toBytes("data_out", r.DataOut)
	if err != nil {
		return Op{}, err
	}
	in, err := toBytes("data_in", r.DataIn)
	if err != nil {
		return Op{}, err
	}
	k := Kind{
		Type:    t,
		Port:    r.Port,
		Baud:    r.Baud,
		Pin:     r.Pin,
		Output:  r.Output,
		Sda:     r.Sda,
		Scl:     r.Scl,
		Mosi:    r.Mosi,
		Miso:    r.Miso,
		Sck:     r.Sck,
		Cs:      r.Cs,
		Tx:      r.Tx,
		Rx:      r.Rx,
		Handle:  r.Handle,
		Addr:    r.Addr,
		Flags:   r.Flags,
		DataOut: out,
		DataIn:  in,
	}
	if r.State != nil {
		k.State = *r.State
	} else if t == GpioSet || t == GpioGet {
		return Op{}, fmt.Errorf("%s requires state", t)
	}
	// A field from another kind would take part in matching without ever
	// showing in a mismatch report.
	if extra := k.stray(); len(extra) > 0 {
		return Op{}, fmt.Errorf("%s does not take %s", t, strings.Join(extra, ", "))
	}
	if r.Res == nil {
		return Op{}, fmt.Errorf("%s requires res", t)
	}
	return Op{Kind: k, Res: *r.Res}, nil
}

func toBytes(field string, v []int) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b := make([]byte, len(v))
	for i, x := range v {
		if x < 0 || x > 0xff {
			return nil, fmt.Errorf("%s[%d] = %d is not a byte", field, i, x)
		}
		b[i] = byte(x)
	}
	return b, nil
}

func fromBytes(b []byte) []int {
	if b == nil {
		return nil
	}
	v := make([]int, len(b))
	for i, x := range b {
		v[i] = int(x)
	}
	return v
}

func (o Op) raw() rawOp {
	k := o.Kind
	res := o.Res
	r := rawOp{
		Kind:    string(k.Type),
		Res:     &res,
		Port:    k.Port,
		Baud:    k.Baud,
		Pin:     k.Pin,
		Output:  k.Output,
		Sda:     k.Sda,
		Scl:     k.Scl,
		Mosi:    k.Mosi,
		Miso:    k.Miso,
		Sck:     k.Sck,
		Cs:      k.Cs,
		Tx:      k.Tx,
		Rx:      k.Rx,
		Handle:  k.Handle,
		Addr:    k.Addr,
		Flags:   k.Flags,
		DataOut: fromBytes(k.DataOut),
		DataIn:  fromBytes(k.DataIn),
	}
	if k.Type == GpioSet || k.Type == GpioGet {
		s := k.State
		r.State = &s
	}
	return r
}

// Encode writes the script in the format Parse reads.
func (c Config) Encode(w io.Writer) error {
	f := file{Ops: make([]rawOp, len(c.Ops))}
	for i, op := range c.Ops {
		f.Ops[i] = op.raw()
	}
	return toml.NewEncoder(w).Encode(f)
}
