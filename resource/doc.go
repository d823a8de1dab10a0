// Package resource provides handle registries for open peripheral devices.
//
// A Registry maps small integer handles to per-device state. Each backend
// keeps one registry per peripheral type:
//
//	pins := resource.NewRegistry[*gpioPin]()
//
//	h, err := pins.Insert(pin)   // 0, then 1, 2, ...
//	pin, ok := pins.Get(h)
//	pin, ok = pins.Remove(h)     // h is never issued again
//
// # Handle Allocation
//
// Handles start at 0 and increase by one per insert. Removal does not make a
// handle available again, so a stale handle held by a guest can never alias
// a newer device. Allocation and insertion are a single atomic step.
//
// # Observers
//
// Subscribers receive EventCreated and EventDropped notifications, which the Linux
// backend uses for device tracing:
//
//	pins.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//		log.Printf("%s handle %d", e.Type, e.Handle)
//	}))
//
// # Teardown
//
// Close drops all remaining entries in handle order. Values that implement
// io.Closer are closed and their errors combined.
package resource
