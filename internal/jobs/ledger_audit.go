package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/event"
)

// LedgerAuditJob sweeps every item and flags any whose donated total has
// drifted from the sum of its donor contributions. All mutations keep the two
// in sync transactionally, so a hit here means corruption worth a human look;
// the job reports and never repairs.
type LedgerAuditJob struct {
	items    domain.ItemRepository
	sink     *event.Sink
	interval time.Duration
	logger   zerolog.Logger
}

func NewLedgerAuditJob(items domain.ItemRepository, sink *event.Sink, interval time.Duration, logger zerolog.Logger) *LedgerAuditJob {
	return &LedgerAuditJob{items: items, sink: sink, interval: interval, logger: logger}
}

func (j *LedgerAuditJob) Name() string { return "ledger_audit" }

func (j *LedgerAuditJob) Schedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *LedgerAuditJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	items, err := j.items.List(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("ledger audit: list items failed")
		return
	}

	mismatches := 0
	for i := range items {
		item := &items[i]
		sum := item.DonorSum()
		if item.Donated == sum {
			continue
		}
		mismatches++
		j.logger.Error().
			Str("item_id", item.ID).
			Int64("donated", int64(item.Donated)).
			Int64("donor_sum", int64(sum)).
			Msg("ledger audit: donated total out of sync with donor list")
		j.sink.Notify(ctx, "ledger_mismatch",
			"Ledger mismatch on "+item.Name+": donated ₹"+item.Donated.Display()+" but donors sum to ₹"+sum.Display(),
			item.ID)
		j.sink.Record(ctx, "ledger_mismatch", "Audit found mismatch on item "+item.Name, "")
	}
	j.logger.Info().Int("items", len(items)).Int("mismatches", mismatches).Msg("ledger audit complete")
}
