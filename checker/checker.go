package checker

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"padel-bot/storage"
	"padel-bot/types"
)

// Fetcher is the slice of the Playtomic client the checker needs.
type Fetcher interface {
	RelevantTenants(ctx context.Context) ([]*types.Tenant, error)
	Availability(ctx context.Context, tenantID string, dates []time.Time) ([]types.Availability, error)
}

// Sender delivers messages to Telegram chats.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Store holds watcher preferences and the last sent reports.
type Store interface {
	Watchers(ctx context.Context) ([]*storage.Watcher, error)
	LastReport(ctx context.Context, chatID int64, tenantID string) (string, error)
	SaveLastReport(ctx context.Context, chatID int64, tenantID, report string) error
}

// Checker periodically fetches availability for the relevant venues and
// notifies watching chats when their report changed.
type Checker struct {
	bot      Sender
	store    Store
	client   Fetcher
	policy   types.DurationPolicy
	interval time.Duration
	log      *zap.Logger
}

func New(bot Sender, store Store, client Fetcher, policy types.DurationPolicy, interval time.Duration, log *zap.Logger) *Checker {
	return &Checker{
		bot:      bot,
		store:    store,
		client:   client,
		policy:   policy,
		interval: interval,
		log:      log,
	}
}

// TwoWeeksOfDates returns today plus the next two weeks, 15 days total.
func TwoWeeksOfDates(now time.Time) []time.Time {
	dates := make([]time.Time, 0, 15)
	for i := 0; i < 15; i++ {
		dates = append(dates, now.AddDate(0, 0, i))
	}
	return dates
}

// Start runs the periodic watch loop until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.log.Info("checker started", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("checker stopped")
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll runs one pass over every watcher. A single venue's fetch
// failure only skips that venue; the rest of the pass continues.
func (c *Checker) CheckAll(ctx context.Context) {
	watchers, err := c.store.Watchers(ctx)
	if err != nil {
		c.log.Error("listing watchers", zap.Error(err))
		return
	}
	if len(watchers) == 0 {
		return
	}

	tenants, err := c.client.RelevantTenants(ctx)
	if err != nil {
		c.log.Error("fetching tenants", zap.Error(err))
		return
	}

	dates := TwoWeeksOfDates(time.Now())
	for _, tenant := range tenants {
		availability, err := c.client.Availability(ctx, tenant.ID(), dates)
		if err != nil {
			c.log.Warn("skipping venue",
				zap.String("tenant", tenant.Name()),
				zap.Error(err))
			continue
		}
		tenant.SetAvailability(availability)

		for _, w := range watchers {
			if len(w.DesiredTimes) == 0 {
				continue
			}
			c.report(ctx, w, tenant)
		}
	}
}

// report sends the venue summary to the watcher when it changed since the
// last send.
func (c *Checker) report(ctx context.Context, w *storage.Watcher, tenant *types.Tenant) {
	summary := tenant.SummariseAvailableCourtsWithSlotsAt(c.policy, w.DesiredTimes...)

	last, err := c.store.LastReport(ctx, w.ChatID, tenant.ID())
	if err != nil {
		c.log.Warn("reading last report", zap.Int64("chat", w.ChatID), zap.Error(err))
	}
	if summary == last {
		return
	}

	if _, err := c.bot.Send(tgbotapi.NewMessage(w.ChatID, summary)); err != nil {
		c.log.Error("sending report", zap.Int64("chat", w.ChatID), zap.Error(err))
		return
	}
	if err := c.store.SaveLastReport(ctx, w.ChatID, tenant.ID(), summary); err != nil {
		c.log.Warn("caching report", zap.Int64("chat", w.ChatID), zap.Error(err))
	}
}

// CheckNow fetches and summarises every relevant venue once for the given
// desired times, without diffing against previous reports. Used by the
// on-demand /courts command.
func (c *Checker) CheckNow(ctx context.Context, desiredTimes []string) ([]string, error) {
	tenants, err := c.client.RelevantTenants(ctx)
	if err != nil {
		return nil, err
	}

	dates := TwoWeeksOfDates(time.Now())
	summaries := make([]string, 0, len(tenants))
	for _, tenant := range tenants {
		availability, err := c.client.Availability(ctx, tenant.ID(), dates)
		if err != nil {
			c.log.Warn("skipping venue",
				zap.String("tenant", tenant.Name()),
				zap.Error(err))
			summaries = append(summaries, fmt.Sprintf("%s: check failed", tenant.Name()))
			continue
		}
		tenant.SetAvailability(availability)
		summaries = append(summaries, tenant.SummariseAvailableCourtsWithSlotsAt(c.policy, desiredTimes...))
	}
	return summaries, nil
}
