// Package events announces simulated payments to other services. Delivery is
// best-effort: a publish failure is logged and never fails the checkout.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	pkgkafka "github.com/dwikikusuma/storefront/pkg/kafka"
)

const DefaultTopic = "payment.simulated"

type PaymentSimulated struct {
	CheckoutID    string    `json:"checkoutId"`
	SessionID     string    `json:"sessionId"`
	Source        string    `json:"source"`
	Method        string    `json:"method"`
	Installments  int       `json:"installments"`
	TotalCents    int64     `json:"totalCents"`
	ScheduleCents []int64   `json:"scheduleCents"`
	Currency      string    `json:"currency"`
	ClearedCart   bool      `json:"clearedCart"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewPaymentSimulated(checkoutID, sessionID string, src domain.Source, r domain.Receipt) PaymentSimulated {
	schedule := make([]int64, 0, len(r.Schedule))
	for _, m := range r.Schedule {
		schedule = append(schedule, m.Amount)
	}
	return PaymentSimulated{
		CheckoutID:    checkoutID,
		SessionID:     sessionID,
		Source:        string(src.Kind()),
		Method:        string(r.Method),
		Installments:  r.Installments,
		TotalCents:    r.Total.Amount,
		ScheduleCents: schedule,
		Currency:      r.Total.Currency,
		ClearedCart:   r.ClearedCart,
		OccurredAt:    time.Now().UTC(),
	}
}

type KafkaPublisher struct {
	w   pkgkafka.MessageWriter
	log *slog.Logger
}

func NewKafkaPublisher(w pkgkafka.MessageWriter, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaPublisher{w: w, log: log}
}

func (p *KafkaPublisher) PaymentSimulated(ctx context.Context, ev PaymentSimulated) {
	if err := pkgkafka.PublishJSON(ctx, p.w, ev.CheckoutID, ev); err != nil {
		p.log.Warn("publish payment event failed", slog.String("checkout_id", ev.CheckoutID), slog.Any("err", err))
	}
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) PaymentSimulated(context.Context, PaymentSimulated) {}

func (Nop) Close() error { return nil }
