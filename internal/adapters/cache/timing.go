package cache

import (
	"context"
	"errors"

	"vrp-route-env/internal/platform/obs"
	"vrp-route-env/internal/ports"
)

// timeGet is obs.Time for cache reads. A miss is an expected answer, not a
// failed operation.
func timeGet(ctx context.Context, name string) func(errp *error) {
	done := obs.Time(ctx, name)
	return func(errp *error) {
		err := *errp
		if errors.Is(err, ports.ErrCacheMiss) {
			err = nil
		}
		done(&err)
	}
}
