// Package execcontext carries the per-invocation context and output streams
// through a report run.
package execcontext

import (
	"context"
	"io"
)

// RunContext is the context of one command invocation.
type RunContext struct {
	Context context.Context
	StdOut  io.Writer
	StdErr  io.Writer
}

// Write sends report output to StdOut.
func (rc RunContext) Write(p []byte) (n int, err error) {
	return rc.StdOut.Write(p)
}

// Err returns the context's error once it is cancelled.
func (rc RunContext) Err() error {
	if rc.Context == nil {
		return nil
	}
	return rc.Context.Err()
}
