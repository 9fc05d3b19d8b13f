// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package ledger

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/beatmaprec/internal/logging"
	"github.com/tomtom215/beatmaprec/internal/metrics"
	"github.com/tomtom215/beatmaprec/internal/models"
)

// Audit event topics
const (
	TopicGiven     = "recommendation.given"
	TopicForgotten = "recommendation.forgotten"
)

// GivenEvent is published after a recommendation is recorded.
type GivenEvent struct {
	Recommendation models.GivenRecommendation `json:"recommendation"`
}

// ForgottenEvent is published after a user's history is deleted.
type ForgottenEvent struct {
	UserID  models.UserID `json:"user_id"`
	Removed int           `json:"removed"`
	At      time.Time     `json:"at"`
}

// NewEventBus creates an in-process pub/sub suitable as the ledger's
// publisher. Subscribers must be attached before events are published.
func NewEventBus(buffer int64) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: buffer},
		watermill.NewSlogLogger(logging.NewSlogLogger()),
	)
}

// publish sends an audit event. Failures are logged and counted; they never
// fail the ledger operation that produced the event.
func (l *Ledger) publish(topic string, user models.UserID, payload any) {
	if l.publisher == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		metrics.LedgerEventsDropped.Inc()
		l.logger.Error().Err(err).Str("topic", topic).Msg("failed to encode ledger event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("user_id", user.String())

	if err := l.publisher.Publish(topic, msg); err != nil {
		metrics.LedgerEventsDropped.Inc()
		l.logger.Warn().Err(err).Str("topic", topic).Str("message_id", msg.UUID).Msg("failed to publish ledger event")
	}
}
