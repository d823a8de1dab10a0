// Package linux implements the capability contracts on Linux userspace
// device interfaces:
//
//	GPIO  sysfs class directory (export, direction, value)
//	I2C   /dev/i2c-N with the I2C_RDWR ioctl
//	SPI   /dev/spidevB.C with SPI_IOC_MESSAGE, mode SPI_MODE_2|SPI_NO_CS by default
//	UART  serial ttys via github.com/tarm/serial, one byte per read or write
//
// Init opens and configures the device eagerly and fails with
// errors.KindFailed if either step fails. Data operations on a handle that
// is not open fail with errors.KindNoDevice; I/O errors fail with
// errors.KindFailed. Handles start at 0 per peripheral type and are never
// reused within one Backend.
//
// The I2C and SPI devices satisfy the tinygo.org/x/drivers bus interfaces,
// so existing sensor drivers can be layered on an opened device.
package linux
