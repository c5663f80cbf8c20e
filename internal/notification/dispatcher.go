package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"netpulse/internal/domain"
	"netpulse/internal/metrics"
	"netpulse/internal/store"
)

// Dispatcher fans a raised alert out to its configured channels. Channels
// fail independently; the alert is marked notified when at least one
// delivery succeeds.
type Dispatcher struct {
	channels    store.ChannelRepository
	alerts      store.AlertRepository
	senders     map[domain.ChannelType]Sender
	sendTimeout time.Duration
	logger      *slog.Logger
}

// NewDispatcher creates a dispatcher over the given senders. Channel types
// without a registered sender are skipped with a warning at dispatch time.
func NewDispatcher(
	channels store.ChannelRepository,
	alerts store.AlertRepository,
	senders []Sender,
	sendTimeout time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	byType := make(map[domain.ChannelType]Sender, len(senders))
	for _, s := range senders {
		byType[s.Type()] = s
	}
	return &Dispatcher{
		channels:    channels,
		alerts:      alerts,
		senders:     byType,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Dispatch delivers the alert to every enabled channel bound to its
// configuration and returns the number of successful deliveries. It blocks
// until every channel has finished or timed out.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *domain.Alert, cfg *domain.AlertConfiguration) int {
	if len(cfg.ChannelIDs) == 0 {
		d.logger.Debug("no channels bound to configuration",
			"config_id", cfg.ID,
			"alert_id", alert.ID)
		return 0
	}

	chans, err := d.channels.GetByIDs(ctx, cfg.ChannelIDs)
	if err != nil {
		d.logger.Error("failed to load notification channels",
			"config_id", cfg.ID,
			"alert_id", alert.ID,
			"error", err)
		return 0
	}

	n := &Notification{Alert: alert, Config: cfg}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for _, ch := range chans {
		if !ch.Enabled {
			continue
		}
		sender, ok := d.senders[ch.Type]
		if !ok {
			d.logger.Warn("no sender registered for channel type",
				"channel_id", ch.ID,
				"channel_type", ch.Type)
			continue
		}

		wg.Add(1)
		go func(ch *domain.NotificationChannel, sender Sender) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()

			if err := sender.Send(sendCtx, ch, n); err != nil {
				metrics.NotificationsSentTotal.WithLabelValues(string(ch.Type), "failure").Inc()
				d.logger.Error("notification delivery failed",
					"alert_id", alert.ID,
					"channel_id", ch.ID,
					"channel_name", ch.Name,
					"channel_type", ch.Type,
					"error", err)
				return
			}

			metrics.NotificationsSentTotal.WithLabelValues(string(ch.Type), "success").Inc()
			if !alert.TriggeredAt.IsZero() {
				metrics.NotificationLatency.Observe(time.Since(alert.TriggeredAt).Seconds())
			}
			d.logger.Info("notification delivered",
				"alert_id", alert.ID,
				"channel_id", ch.ID,
				"channel_type", ch.Type)

			mu.Lock()
			succeeded++
			mu.Unlock()
		}(ch, sender)
	}
	wg.Wait()

	if succeeded > 0 {
		if err := d.alerts.MarkNotified(ctx, alert.ID); err != nil {
			d.logger.Error("failed to mark alert notified",
				"alert_id", alert.ID,
				"error", err)
		}
	}
	return succeeded
}
