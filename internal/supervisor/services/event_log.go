// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package services

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/beatmaprec/internal/ledger"
	"github.com/tomtom215/beatmaprec/internal/metrics"
)

// EventLogService consumes ledger audit events and writes them to the log.
// Every message is acked; the log is the only sink.
type EventLogService struct {
	subscriber message.Subscriber
	topics     []string
	logger     zerolog.Logger
	name       string
}

// NewEventLogService creates a consumer for the given topics. With no topics
// it subscribes to every ledger topic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventLogService(subscriber message.Subscriber, logger zerolog.Logger, topics ...string) *EventLogService {
	if len(topics) == 0 {
		topics = []string{ledger.TopicGiven, ledger.TopicForgotten}
	}
	return &EventLogService{
		subscriber: subscriber,
		topics:     topics,
		logger:     logger.With().Str("service", "event-log").Logger(),
		name:       "ledger-event-log",
	}
}

// Serve implements suture.Service. It returns an error when a subscription
// closes unexpectedly so the supervisor restarts it.
func (s *EventLogService) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	merged := make(chan topicMessage)
	for _, topic := range s.topics {
		ch, err := s.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go forward(ctx, topic, ch, merged)
	}

	s.logger.Info().Strs("topics", s.topics).Msg("ledger event log started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("ledger event log shutting down")
			return ctx.Err()
		case tm := <-merged:
			if tm.msg == nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", tm.topic)
			}
			s.handle(tm.topic, tm.msg)
		}
	}
}

type topicMessage struct {
	topic string
	msg   *message.Message
}

// forward relays one subscription into out. A nil message signals closure.
func forward(ctx context.Context, topic string, in <-chan *message.Message, out chan<- topicMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				msg = nil
			}
			select {
			case out <- topicMessage{topic: topic, msg: msg}:
			case <-ctx.Done():
				return
			}
			if !ok {
				return
			}
		}
	}
}

func (s *EventLogService) handle(topic string, msg *message.Message) {
	metrics.LedgerEventsConsumed.WithLabelValues(topic).Inc()
	s.logger.Info().
		Str("topic", topic).
		Str("message_id", msg.UUID).
		Str("user_id", msg.Metadata.Get("user_id")).
		RawJSON("payload", msg.Payload).
		Msg("ledger event")
	msg.Ack()
}

// String returns the service name for logging.
func (s *EventLogService) String() string {
	return s.name
}
