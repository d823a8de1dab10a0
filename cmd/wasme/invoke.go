package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/errors"
	"github.com/wippyai/wasm-embedded/hal"
)

// parseArg converts console text into the Go value for p. Byte lists are
// hex ("01 02" or "0x0102"); an out buffer takes its length instead. An
// empty s32 is -1, the "unused pin" value.
func parseArg(value string, p abi.Param) (any, error) {
	value = strings.TrimSpace(value)
	if p.Out {
		n, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("buffer length: %w", err)
		}
		return make([]byte, n), nil
	}
	if abi.IsBytes(p.Type) {
		s := strings.TrimPrefix(strings.ReplaceAll(value, " ", ""), "0x")
		return hex.DecodeString(s)
	}

	switch p.Type.(type) {
	case wit.Bool:
		return strconv.ParseBool(value)
	case wit.U16:
		v, err := strconv.ParseUint(value, 0, 16)
		return uint16(v), err
	case wit.U32:
		v, err := strconv.ParseUint(value, 0, 32)
		return uint32(v), err
	case wit.S32:
		if value == "" {
			return int32(-1), nil
		}
		v, err := strconv.ParseInt(value, 0, 32)
		return int32(v), err
	}
	return nil, fmt.Errorf("unsupported type %s", abi.TypeString(p.Type))
}

// invoke calls f on hw with arguments parsed from text and renders the
// result for display.
func invoke(hw *hal.Engine, f abi.Func, text []string) (string, error) {
	if len(text) != len(f.Params) {
		return "", fmt.Errorf("%s takes %d arguments, got %d", f.Name, len(f.Params), len(text))
	}
	args := make([]any, len(text))
	for i, p := range f.Params {
		// transfer clocks out the bytes given, not a zeroed buffer
		if f.Module == abi.ModuleSpi && f.Name == abi.FuncTransfer {
			p.Out = false
		}
		v, err := parseArg(text[i], p)
		if err != nil {
			return "", fmt.Errorf("%s: %w", p.Name, err)
		}
		args[i] = v
	}
	if !hw.Provides(hal.Peripheral(f.Module)) {
		return "", errors.NotProvided(f.Module)
	}

	switch f.Module {
	case abi.ModuleGpio:
		return invokeGpio(hw.Gpio, f.Name, args)
	case abi.ModuleI2c:
		return invokeI2c(hw.I2c, f.Name, args)
	case abi.ModuleSpi:
		return invokeSpi(hw.Spi, f.Name, args)
	case abi.ModuleUart:
		return invokeUart(hw.Uart, f.Name, args)
	}
	return "", fmt.Errorf("unknown module %q", f.Module)
}

func handleResult(h hal.Handle, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("handle %d", h), nil
}

func okResult(err error) (string, error) {
	if err != nil {
		return "", err
	}
	return "ok", nil
}

func bytesResult(buf []byte, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[% x]", buf), nil
}

func invokeGpio(g hal.Gpio, name string, args []any) (string, error) {
	switch name {
	case abi.FuncInit:
		return handleResult(g.Init(args[0].(uint32), args[1].(uint32), args[2].(bool)))
	case abi.FuncDeinit:
		return okResult(g.Deinit(args[0].(int32)))
	case abi.FuncSet:
		state := args[1].(uint32)
		if state > uint32(hal.High) {
			return "", errors.InvalidArg(errors.PhaseIO, abi.ModuleGpio, abi.FuncSet, "state must be 0 or 1")
		}
		return okResult(g.Set(args[0].(int32), hal.PinState(state)))
	case abi.FuncGet:
		state, err := g.Get(args[0].(int32))
		if err != nil {
			return "", err
		}
		return state.String(), nil
	}
	return "", fmt.Errorf("unknown gpio function %q", name)
}

func invokeI2c(d hal.I2c, name string, args []any) (string, error) {
	switch name {
	case abi.FuncInit:
		return handleResult(d.Init(args[0].(uint32), args[1].(uint32), args[2].(int32), args[3].(int32)))
	case abi.FuncDeinit:
		return okResult(d.Deinit(args[0].(int32)))
	case abi.FuncWrite:
		return okResult(d.Write(args[0].(int32), args[1].(uint16), args[2].([]byte)))
	case abi.FuncRead:
		buf := args[2].([]byte)
		return bytesResult(buf, d.Read(args[0].(int32), args[1].(uint16), buf))
	case abi.FuncWriteRead:
		buf := args[3].([]byte)
		return bytesResult(buf, d.WriteRead(args[0].(int32), args[1].(uint16), args[2].([]byte), buf))
	}
	return "", fmt.Errorf("unknown i2c function %q", name)
}

func invokeSpi(d hal.Spi, name string, args []any) (string, error) {
	switch name {
	case abi.FuncInit:
		return handleResult(d.Init(args[0].(uint32), args[1].(uint32),
			args[2].(int32), args[3].(int32), args[4].(int32), args[5].(int32)))
	case abi.FuncDeinit:
		return okResult(d.Deinit(args[0].(int32)))
	case abi.FuncRead:
		buf := args[1].([]byte)
		return bytesResult(buf, d.Read(args[0].(int32), buf))
	case abi.FuncWrite:
		return okResult(d.Write(args[0].(int32), args[1].([]byte)))
	case abi.FuncTransfer:
		buf := args[1].([]byte)
		return bytesResult(buf, d.Transfer(args[0].(int32), buf))
	}
	return "", fmt.Errorf("unknown spi function %q", name)
}

func invokeUart(d hal.Uart, name string, args []any) (string, error) {
	switch name {
	case abi.FuncInit:
		return handleResult(d.Init(args[0].(uint32), args[1].(uint32), args[2].(int32), args[3].(int32)))
	case abi.FuncDeinit:
		return okResult(d.Deinit(args[0].(int32)))
	case abi.FuncWrite:
		return okResult(d.Write(args[0].(int32), args[1].(uint32), args[2].([]byte)))
	case abi.FuncRead:
		buf := args[2].([]byte)
		return bytesResult(buf, d.Read(args[0].(int32), args[1].(uint32), buf))
	}
	return "", fmt.Errorf("unknown uart function %q", name)
}
