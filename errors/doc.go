// Package errors provides structured error types for the host bridge.
//
// Errors are categorized by Phase (where in the boundary crossing the error
// occurred) and Kind (error category). The Error type includes rich context:
// host/native type names, the offending value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindRange).
//		NativeType("u64").
//		Value(9007199254740993.0).
//		Detail("cannot convert 9007199254740993 to u64").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Range(errors.PhaseConvert, value, "u32")
//	err := errors.TypeMismatch(errors.PhaseConvert, "string", "[]byte")
//
// All errors implement the standard error interface and support errors.Is/As.
// HostClass reports which host exception class a bridge error should surface
// as (RangeError, TypeError, or a plain Error).
package errors
