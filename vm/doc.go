// Package vm implements the stack-machine interpreter that executes images
// produced by github.com/dmbetz/mbasic/compiler: a frame-based calling
// convention over a cached-top-of-stack expression stack, a split
// TEXT/DATA address space, and host-trap dispatch for every I/O operation
// (section 4.G / 4.H of the design this toolchain follows).
//
// An Instance owns its own copy of DATA (TEXT is read-only and may be
// shared across runs of the same image) and is driven to completion by
// Run, which returns nil on OP_HALT and a non-nil error on any run-time
// abort: stack overflow, an undefined opcode, or an undefined trap.
package vm
