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

// PendingDigestJob reminds the admin about donations that have sat in the
// review queue too long, batched into one notification per run.
type PendingDigestJob struct {
	donations domain.DonationRepository
	sink      *event.Sink
	maxAge    time.Duration
	logger    zerolog.Logger
}

func NewPendingDigestJob(donations domain.DonationRepository, sink *event.Sink, maxAge time.Duration, logger zerolog.Logger) *PendingDigestJob {
	return &PendingDigestJob{donations: donations, sink: sink, maxAge: maxAge, logger: logger}
}

func (j *PendingDigestJob) Name() string { return "pending_digest" }

func (j *PendingDigestJob) Schedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Hour)
}

func (j *PendingDigestJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	recs, err := j.donations.List(ctx, domain.DonationsPending)
	if err != nil {
		j.logger.Error().Err(err).Msg("pending digest: list donations failed")
		return
	}

	cutoff := time.Now().Add(-j.maxAge)
	stale := 0
	var total domain.Amount
	for _, rec := range recs {
		if rec.SubmittedAt.Before(cutoff) {
			stale++
			total += rec.Amount
		}
	}
	if stale == 0 {
		j.logger.Debug().Int("pending", len(recs)).Msg("pending digest: nothing overdue")
		return
	}

	j.sink.Notify(ctx, "pending_review",
		fmt.Sprintf("%d donation(s) totalling ₹%s awaiting review for over %s", stale, total.Display(), j.maxAge),
		"")
	j.logger.Info().Int("stale", stale).Msg("pending digest sent")
}
