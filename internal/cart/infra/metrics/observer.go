// Package metrics counts cart mutations in Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

type Observer struct {
	mutations *prometheus.CounterVec
}

// NewObserver counts into mutations, which must carry a single "op" label.
func NewObserver(mutations *prometheus.CounterVec) *Observer {
	return &Observer{mutations: mutations}
}

func (o *Observer) CartMutated(op domain.Op, _ string) {
	o.mutations.WithLabelValues(string(op)).Inc()
}
