package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
)

// runRecovered executes the task and converts a panic into an error carrying
// the stack, so one bad run cannot take the scheduler down.
func runRecovered(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return task(ctx)
}
