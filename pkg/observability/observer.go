// Package observability defines the hook through which clients report the
// operations they perform, so metrics and other sinks can be attached
// without the clients depending on them.
package observability

import "time"

// OperationContext describes one completed client operation.
type OperationContext struct {
	// Component is the reporting client, e.g. "postgres".
	Component string

	// Operation is the client method, e.g. "insert_matching".
	Operation string

	// Resource is the object operated on, usually a table name. May be empty
	// for raw query operations.
	Resource string

	// SubResource carries additional context such as a file path or sheet name.
	SubResource string

	Duration time.Duration

	// Error is the error returned to the caller, nil on success.
	Error error

	// Rows is the number of rows read, written or copied.
	Rows int64

	Metadata map[string]interface{}
}

// Observer receives an OperationContext after every observed operation.
// Implementations must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}
