package engine

import (
	"context"

	"github.com/bianoble/craftlaunch/internal/launch"
)

// Launch resolves the instance and spawns the game. The returned process is
// not supervised; the caller decides whether to wait on it.
func (e *Engine) Launch(ctx context.Context) (*launch.Process, *Summary, error) {
	plan, sum, err := e.Resolve(ctx)
	if err != nil {
		return nil, sum, err
	}
	proc, err := e.Invoker.Invoke(ctx, plan)
	if err != nil {
		return nil, sum, err
	}
	return proc, sum, nil
}
