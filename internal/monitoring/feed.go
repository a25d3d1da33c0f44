package monitoring

import (
	"context"
	"fmt"

	"github.com/isdelr/machine-monitor-be/internal/metrics"
	"github.com/isdelr/machine-monitor-be/internal/services"
	"github.com/isdelr/machine-monitor-be/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Publisher fans a message out to connected clients.
type Publisher interface {
	Publish(message []byte) bool
}

// Feed periodically draws a prediction and pushes it to websocket clients.
type Feed struct {
	predictionSvc services.PredictionServiceProvider
	publisher     Publisher
	schedule      string
}

// NewFeed creates a feed running on a standard cron schedule (e.g. "@every 10s").
func NewFeed(predictionSvc services.PredictionServiceProvider, publisher Publisher, schedule string) (*Feed, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid feed schedule %q: %w", schedule, err)
	}
	return &Feed{
		predictionSvc: predictionSvc,
		publisher:     publisher,
		schedule:      schedule,
	}, nil
}

// Serve runs the schedule until ctx is cancelled.
func (f *Feed) Serve(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(f.schedule, f.broadcast); err != nil {
		return fmt.Errorf("schedule feed: %w", err)
	}

	log.Info().Str("schedule", f.schedule).Msg("Starting prediction feed")
	c.Start()

	<-ctx.Done()
	log.Info().Msg("Stopping prediction feed")
	<-c.Stop().Done()
	return ctx.Err()
}

// String names the feed for the supervisor.
func (f *Feed) String() string {
	return "prediction-feed"
}

func (f *Feed) broadcast() {
	p := f.predictionSvc.Predict()
	if f.publisher.Publish(websocket.NewPredictionMessage(p)) {
		metrics.FeedBroadcastsTotal.Inc()
		log.Debug().Float64("efficiency", p.Efficiency).Str("status", p.Status).Msg("Broadcast prediction")
	}
}
