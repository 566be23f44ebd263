package host

// Exception is a host exception travelling through Go code as an error.
// Adapters translate it into their engine's throw mechanism at the
// boundary; the bridge's error mapping produces them from native errors.
type Exception struct {
	// Value is the host exception value to throw. It is always set.
	Value Value
	// Message is the exception's message, kept alongside the value so Go
	// code can log it without touching host memory.
	Message string
}

// Error implements the error interface.
func (e *Exception) Error() string {
	return e.Message
}

// Throw wraps a host exception value into an error.
func Throw(v Value, msg string) *Exception {
	return &Exception{Value: v, Message: msg}
}
