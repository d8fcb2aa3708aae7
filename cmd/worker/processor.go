package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/orders"
)

// Processor consumes order events and advances fulfillment.
type Processor struct {
	orderStore *orders.Store
}

// NewProcessor creates a worker processor.
func NewProcessor(dynamo aws.DynamoDBAPI, ordersTable string) *Processor {
	return &Processor{orderStore: orders.NewStore(dynamo, ordersTable)}
}

// Handle receives an SQS batch and processes each message. A returned
// error makes the runtime retry; eventually the message lands in the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Error().Err(err).Str("message_id", rec.MessageId).Msg("worker error")
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var ev aws.OrderEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	switch ev.Type {
	case aws.EventOrderPaid:
		return p.handlePaid(ctx, ev)
	case aws.EventOrderCancelled:
		log.Info().Str("order_id", ev.OrderID).Float64("amount", ev.Amount).
			Str("method", ev.Method).Msg("order cancelled, no fulfillment action")
		return nil
	default:
		log.Warn().Str("type", ev.Type).Str("order_id", ev.OrderID).Msg("unknown event type, skipping")
		return nil
	}
}

// handlePaid moves a paid order into preparation. The CAS write makes the
// handler safe under SQS at-least-once delivery.
func (p *Processor) handlePaid(ctx context.Context, ev aws.OrderEvent) error {
	err := p.orderStore.CASStatus(ctx, ev.OrderID, orders.StatusConfirmed, orders.StatusPreparing)
	if err == nil {
		log.Info().Str("order_id", ev.OrderID).Msg("order moved to preparing")
		return nil
	}
	if !errors.Is(err, orders.ErrStatusMismatch) {
		return fmt.Errorf("advance order %s: %w", ev.OrderID, err)
	}

	// lost the CAS: look at where the order actually is
	o, getErr := p.orderStore.Get(ctx, ev.OrderID)
	if getErr != nil {
		return fmt.Errorf("refetch order %s: %w", ev.OrderID, getErr)
	}
	if o == nil {
		return fmt.Errorf("order not found: %s", ev.OrderID)
	}
	switch o.Status {
	case orders.StatusPreparing, orders.StatusShipping, orders.StatusDelivered:
		log.Info().Str("order_id", ev.OrderID).Str("status", string(o.Status)).
			Msg("duplicate paid event, order already in fulfillment")
		return nil
	case orders.StatusCancelled:
		log.Warn().Str("order_id", ev.OrderID).
			Msg("paid event for cancelled order, leaving for manual refund review")
		return nil
	default:
		return fmt.Errorf("unexpected status for order %s: %s", ev.OrderID, o.Status)
	}
}
