// Package cabi binds capability imports through C-style driver tables.
//
// A driver is a struct of plain functions, one per operation, each taking
// an opaque Context as its first argument and returning an int32: zero or
// a positive value on success, a negated abi.Errno on failure. Contexts
// are indices into a side table owned by the Runtime; zero is null.
//
// Each peripheral type is bound at most once per Runtime, before the guest
// runs. Closing the Runtime releases every side-table slot and nulls the
// bound contexts, after which calls return -Unexpected.
//
//	rt := cabi.NewRuntime()
//	defer rt.Close()
//	if err := rt.BindEngine(hw); err != nil {
//		return err
//	}
//	if err := s.Bind(ctx, rt); err != nil {
//		return err
//	}
package cabi
