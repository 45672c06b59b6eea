package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vivispa/catalog-api/internal/service/catalog"
	"github.com/vivispa/catalog-api/pkg/messaging"
	"github.com/vivispa/catalog-api/pkg/metrics"
)

// Subscriber syncs this instance when another instance announces a reload.
type Subscriber struct {
	broker  messaging.Broker
	channel string
	syncer  Syncer
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewSubscriber(broker messaging.Broker, channel string, syncer Syncer, m *metrics.Metrics, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		broker:  broker,
		channel: channel,
		syncer:  syncer,
		metrics: m,
		logger:  logger.With().Str("component", "subscriber").Str("channel", channel).Logger(),
	}
}

// Start subscribes and handles events until ctx is done or the
// subscription closes.
func (s *Subscriber) Start(ctx context.Context) error {
	msgs, err := s.broker.Subscribe(ctx, s.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to reload events: %w", err)
	}
	s.logger.Info().Msg("listening for reload events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-msgs:
			if !ok {
				return nil
			}
			s.handle(ctx, data)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, data []byte) {
	msg, err := messaging.Decode(data)
	if err != nil {
		s.received("invalid")
		s.logger.Warn().Err(err).Msg("dropping malformed message")
		return
	}
	if msg.Type != catalog.EventReloaded {
		s.received("ignored")
		return
	}

	var ev catalog.ReloadEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		s.received("invalid")
		s.logger.Warn().Err(err).Msg("dropping malformed reload event")
		return
	}
	if ev.Origin == s.syncer.InstanceID() {
		s.received("ignored")
		return
	}

	if err := s.syncer.Sync(ctx); err != nil {
		s.received("failed")
		s.logger.Error().Err(err).Str("origin", ev.Origin).Msg("failed to sync after remote reload")
		return
	}
	s.received("success")
	s.logger.Info().Str("origin", ev.Origin).Int64("remote_version", ev.Version).Msg("synced after remote reload")
}

func (s *Subscriber) received(status string) {
	s.metrics.BrokerMessages.WithLabelValues("receive", status).Inc()
}
