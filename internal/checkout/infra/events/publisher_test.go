package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, nil)

	receipt := domain.Receipt{Success: true, ClearedCart: true, Method: domain.MethodCreditCard, Installments: 3, Total: domain.BRL(7500),
		Schedule: []domain.Money{domain.BRL(2500), domain.BRL(2500), domain.BRL(2500)}}
	ev := NewPaymentSimulated("chk-1", "sess-1", domain.CartOnly{}, receipt)
	p.PaymentSimulated(context.Background(), ev)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "chk-1", string(w.msgs[0].Key))

	var got PaymentSimulated
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "cart_only", got.Source)
	assert.Equal(t, "credit-card", got.Method)
	assert.Equal(t, int64(7500), got.TotalCents)
	assert.Equal(t, []int64{2500, 2500, 2500}, got.ScheduleCents)
	assert.Equal(t, "BRL", got.Currency)
	assert.True(t, got.ClearedCart)
}

func TestKafkaPublisherSwallowsErrors(t *testing.T) {
	p := NewKafkaPublisher(&fakeWriter{err: errors.New("broker down")}, nil)
	assert.NotPanics(t, func() {
		p.PaymentSimulated(context.Background(), PaymentSimulated{CheckoutID: "x"})
	})
}
