// Package hal defines the capability contracts guest programs reach through
// the host: Gpio, I2c, Spi and Uart.
//
// Every backend (real hardware, deterministic mock) implements the same four
// interfaces. Devices are opened with Init, which returns a Handle, addressed
// by that handle in data operations, and released with Deinit. A handle that
// is not open fails with errors.KindNoDevice; calling Deinit twice is such a
// failure.
//
// An Engine bundles one provider per peripheral type for a single guest
// session:
//
//	hw := &hal.Engine{Gpio: backend.Gpio(), I2c: backend.I2c()}
//	if err := hw.Require(hal.PeripheralGpio); err != nil {
//		return err
//	}
//
// Capability calls are synchronous and block until the device I/O completes.
package hal
