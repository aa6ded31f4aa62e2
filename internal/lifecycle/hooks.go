package lifecycle

import (
	"context"
	"io"
)

// Hook is a named shutdown step.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Closer adapts an io.Closer into a shutdown hook function.
func Closer(c io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return c.Close()
	}
}
