package cli

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
)

// quietOnInterrupt turns a failure caused by SIGINT/SIGTERM into a clean exit.
// Temporary files are already removed by the time the workers return.
func quietOnInterrupt(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		ctxlog.From(ctx).Info("Interrupted, exiting")
		return nil
	}
	return err
}
