package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const EpisodeIDKey ctxKey = "episode_id"

// WithEpisodeID tags ctx and its logger with an episode identifier.
func WithEpisodeID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, EpisodeIDKey, id)
	logger := zerolog.Ctx(ctx).With().Str("episode_id", id).Logger()
	return logger.WithContext(ctx)
}

// EpisodeID returns the identifier stored by WithEpisodeID, if any.
func EpisodeID(ctx context.Context) string {
	id, _ := ctx.Value(EpisodeIDKey).(string)
	return id
}

// Time logs how long an operation took. Usage:
//
//	defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Warn().
				Str("op", name).
				Int64("dur_ms", dur.Milliseconds()).
				Err(*errp).
				Msg("operation failed")
			return
		}
		logger.Debug().
			Str("op", name).
			Int64("dur_ms", dur.Milliseconds()).
			Msg("operation done")
	}
}
