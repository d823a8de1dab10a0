//go:build !linux

package linux

import (
	stderrors "errors"
)

var errUnsupported = stderrors.New("linux device interfaces are not available on this platform")

func openI2cDev(string) (i2cBus, error) { return nil, errUnsupported }

func openSpiDev(string, uint8, uint32) (spiBus, error) { return nil, errUnsupported }
