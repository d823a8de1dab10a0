// Package mock provides a deterministic capability backend that replays a
// script of expected operations.
//
// A script is a TOML file with one [[ops]] table per call, tagged by kind:
//
//	[[ops]]
//	kind = "gpio_init"
//	port = 0
//	pin = 1
//	output = true
//	res = 0
//
//	[[ops]]
//	kind = "i2c_read"
//	handle = 0
//	addr = 0x40
//	data_in = [0xAA, 0xBB]
//	res = 0
//
// Every capability call is compared with the next scripted op. Read-style
// calls first receive the scripted data_in (or state) and are then compared
// using the buffer contents. The first call that differs, or any call after
// the script ends, panics with *ExpectationMismatch; engine sessions pass
// that panic through instead of trapping the guest.
//
// res is returned as the handle for init ops when non-negative. Otherwise
// it is a guest error code (negated for init ops) turned into the matching
// capability error, so scripts can drive guest error paths. The mock keeps
// no device state of its own.
//
// Close verifies that the recorded calls equal the script exactly.
package mock
