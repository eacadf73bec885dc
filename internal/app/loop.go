// Package app wires the store, the browser session and an extraction mode into
// the resumable enrichment run, plus the offline import and status steps.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shpitdev/connections-enricher/internal/browser"
	"github.com/shpitdev/connections-enricher/internal/contacts"
	"github.com/shpitdev/connections-enricher/internal/extract"
)

// ErrTooManyRestarts aborts a run once one record has expired the session more
// often than Loop.MaxRestarts allows.
var ErrTooManyRestarts = errors.New("too many session restarts")

// Saver persists the store after every mutation. contacts.File implements it.
type Saver interface {
	Save(s *contacts.Store) error
}

// Loop drives one extraction mode over the store until no record has its target
// field blank.
type Loop struct {
	Mode  extract.Mode
	Store *contacts.Store
	Saver Saver

	Open        browser.Opener
	Browser     browser.Options
	Credentials browser.Credentials

	// SearchInterval is waited before each connections search.
	SearchInterval time.Duration
	// LoginCooldown is the minimum spacing between logins. Zero disables it.
	LoginCooldown time.Duration
	// MaxRestarts caps consecutive session rebuilds for one record. Zero means unlimited.
	MaxRestarts int

	Logger *zap.Logger
}

// Stats summarizes a run.
type Stats struct {
	Assigned     int
	SoftFailures int
	Restarts     int
}

// Run processes records one at a time. Each assignment is saved before the next
// record is chosen. The session, if any, is closed on return.
func (l *Loop) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("mode", l.Mode.Name()))
	limiter := loginLimiter(l.LoginCooldown)

	var sess *browser.Session
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("close session", zap.Error(err))
		}
	}()

	attempts := make(map[string]int)
	restarts := 0
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rec, ok := l.Mode.Find(l.Store)
		if !ok {
			logger.Info("run complete",
				zap.Int("assigned", stats.Assigned),
				zap.Int("softFailures", stats.SoftFailures),
				zap.Int("restarts", stats.Restarts),
			)
			return stats, nil
		}

		if sess == nil {
			s, err := l.startSession(ctx, limiter, logger)
			if err != nil {
				return stats, err
			}
			sess = s
		}

		attempts[rec.Name]++
		logger.Info("extracting", zap.String("name", rec.Name), zap.Int("attempt", attempts[rec.Name]))
		start := time.Now()
		res := l.Mode.Fetch(ctx, sess, rec.Name, l.SearchInterval)
		elapsed := time.Since(start).Round(time.Millisecond)

		// A cancelled run must not record the cancellation as the contact's value.
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		switch res.Outcome {
		case extract.OutcomeSessionTimeout:
			sess.Expire()
			if err := sess.Close(); err != nil {
				logger.Warn("close expired session", zap.Error(err))
			}
			sess = nil
			stats.Restarts++
			restarts++
			logger.Warn("session expired, restarting",
				zap.String("name", rec.Name),
				zap.Int("restarts", restarts),
				zap.Duration("duration", elapsed),
				zap.Error(res.Err),
			)
			if l.MaxRestarts > 0 && restarts > l.MaxRestarts {
				return stats, fmt.Errorf("%w: %d for %q: %v", ErrTooManyRestarts, restarts, rec.Name, res.Err)
			}
			continue

		case extract.OutcomeSoftFailure:
			v := extract.FailureValue(res.Err)
			l.Mode.Assign(l.Store, rec, v)
			stats.SoftFailures++
			logger.Warn("soft failure",
				zap.String("name", rec.Name),
				zap.Duration("duration", elapsed),
				zap.String("error", extract.FailureMessage(res.Err)),
			)

		default:
			l.Mode.Assign(l.Store, rec, res.Value)
			stats.Assigned++
			logger.Info("extracted",
				zap.String("name", rec.Name),
				zap.Stringer("value", res.Value),
				zap.Duration("duration", elapsed),
			)
		}

		restarts = 0
		if err := l.Saver.Save(l.Store); err != nil {
			return stats, fmt.Errorf("save store: %w", err)
		}
	}
}

func (l *Loop) startSession(ctx context.Context, limiter *rate.Limiter, logger *zap.Logger) (*browser.Session, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for login cooldown: %w", err)
	}
	sess, err := browser.Open(ctx, l.Open, l.Browser)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	start := time.Now()
	if err := sess.Login(ctx, l.Credentials); err != nil {
		_ = sess.Close()
		return nil, err
	}
	logger.Info("logged in", zap.Duration("duration", time.Since(start).Round(time.Millisecond)))
	return sess, nil
}

func loginLimiter(cooldown time.Duration) *rate.Limiter {
	if cooldown <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(cooldown), 1)
}
