package jobs

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/rondoninha/leitura/internal/middleware"
	"github.com/rondoninha/leitura/internal/store"
)

// Scheduler runs the background maintenance tasks: the nightly completion
// backfill and periodic cleanup of expired sessions and stale rate-limit
// buckets.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	readings    *store.ReadingStore
	sessions    *store.SessionStore
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(loc *time.Location, readings *store.ReadingStore, sessions *store.SessionStore, rl *middleware.RateLimiter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(loc),
		readings:    readings,
		sessions:    sessions,
		rateLimiter: rl,
		logger:      logger,
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Day().At("03:00").Do(s.backfillCompletions)
	s.scheduler.Every(1).Hour().Do(s.cleanup)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// backfillCompletions re-checks every (user, plan, book) that has readings
// and records any completion the live path missed. Readings that predate
// the completions table get their badges this way.
func (s *Scheduler) backfillCompletions() {
	keys, err := s.readings.ListCompletionKeys()
	if err != nil {
		s.logger.Error("backfill: list keys", "error", err)
		return
	}

	var added int
	for _, k := range keys {
		recorded, err := s.readings.BackfillCompletion(k.UserID, k.PlanID, k.BookID)
		if err != nil {
			s.logger.Error("backfill: check completion",
				"user_id", k.UserID, "plan_id", k.PlanID, "book_id", k.BookID, "error", err)
			continue
		}
		if recorded {
			added++
		}
	}
	s.logger.Info("completion backfill finished", "checked", len(keys), "added", added)
}

func (s *Scheduler) cleanup() {
	if n, err := s.sessions.DeleteExpired(); err != nil {
		s.logger.Error("session cleanup", "error", err)
	} else if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	s.rateLimiter.Cleanup()
}
