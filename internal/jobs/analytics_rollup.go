package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/event"
)

// AnalyticsRollupJob writes the previous day's counters into the activity
// trail once a day, so the dashboard history survives counter resets.
type AnalyticsRollupJob struct {
	analytics domain.AnalyticsRepository
	sink      *event.Sink
	logger    zerolog.Logger
}

func NewAnalyticsRollupJob(analytics domain.AnalyticsRepository, sink *event.Sink, logger zerolog.Logger) *AnalyticsRollupJob {
	return &AnalyticsRollupJob{analytics: analytics, sink: sink, logger: logger}
}

func (j *AnalyticsRollupJob) Name() string { return "analytics_rollup" }

func (j *AnalyticsRollupJob) Schedule() gocron.JobDefinition {
	// Shortly after midnight UTC, once the day's counters are final.
	return gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 10, 0)))
}

func (j *AnalyticsRollupJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	summary, err := j.analytics.GetSummary(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("analytics rollup: summary failed")
		return
	}
	if summary == nil {
		return
	}

	details := fmt.Sprintf("Daily summary %s: %d page views, %d donations (₹%s), %d verified, %d rejected, %.1f%% conversion",
		summary.Day, summary.PageViews, summary.DonationsSubmitted, summary.AmountSubmitted.Display(),
		summary.DonationsVerified, summary.DonationsRejected, summary.ConversionRate())
	j.sink.Record(ctx, "analytics_rollup", details, "")
	j.logger.Info().Str("day", summary.Day).Msg("analytics rollup recorded")
}
