package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shrusti-bit/project-shelter/internal/domain"
)

// Sink writes the audit trail, admin notifications and analytics counters.
// Every method is best-effort telemetry: failures are logged and swallowed so
// they can never roll back or fail the ledger mutation that triggered them.
type Sink struct {
	activity      domain.ActivityRepository
	notifications domain.NotificationRepository
	analytics     domain.AnalyticsRepository
	logger        zerolog.Logger
}

// NewSink wires the sink onto its repositories.
func NewSink(activity domain.ActivityRepository, notifications domain.NotificationRepository, analytics domain.AnalyticsRepository, logger zerolog.Logger) *Sink {
	return &Sink{
		activity:      activity,
		notifications: notifications,
		analytics:     analytics,
		logger:        logger,
	}
}

// Record appends one audit entry.
func (s *Sink) Record(ctx context.Context, entryType, details, actor string) {
	if actor == "" {
		actor = "system"
	}
	err := s.activity.Append(ctx, &domain.ActivityEntry{
		ID:        uuid.NewString(),
		Type:      entryType,
		Details:   details,
		Actor:     actor,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("type", entryType).Msg("activity log failed")
	}
}

// Notify creates an unread admin notification.
func (s *Sink) Notify(ctx context.Context, notifType, message, itemID string) {
	err := s.notifications.Create(ctx, &domain.Notification{
		ID:        uuid.NewString(),
		Type:      notifType,
		Message:   message,
		ItemID:    itemID,
		Read:      false,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("type", notifType).Msg("notification create failed")
	}
}

// Count bumps today's analytics counters.
func (s *Sink) Count(ctx context.Context, counters map[string]int64) {
	day := time.Now().UTC().Format("2006-01-02")
	if err := s.analytics.IncrementCounters(ctx, day, counters); err != nil {
		s.logger.Error().Err(err).Msg("analytics counter update failed")
	}
}
