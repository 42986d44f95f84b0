package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOrderMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordOrderPlaced()
	m.RecordOrderPlaced()
	m.RecordOrderConfirmed()
	m.RecordOrderCancelled()
	m.RecordPlacementFailed("insufficient_stock")
	m.RecordStatusTransition("CONFIRMED")
	m.RecordPlacementDuration(50 * time.Millisecond)

	if got := testutil.ToFloat64(m.ordersPlaced); got != 2 {
		t.Errorf("ordersPlaced = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ordersConfirmed); got != 1 {
		t.Errorf("ordersConfirmed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ordersCancelled); got != 1 {
		t.Errorf("ordersCancelled = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.placementFailed.WithLabelValues("insufficient_stock")); got != 1 {
		t.Errorf("placementFailed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.statusTransitions.WithLabelValues("CONFIRMED")); got != 1 {
		t.Errorf("statusTransitions = %v, want 1", got)
	}
	// Placed дважды, одна отмена: одна активная.
	if got := testutil.ToFloat64(m.activeOrders); got != 1 {
		t.Errorf("activeOrders = %v, want 1", got)
	}
}

// Повторная регистрация на том же registry переиспользует коллекторы.
func TestOrderMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newOrderMetricsWithRegisterer(registry)
	second := newOrderMetricsWithRegisterer(registry)

	first.RecordOrderPlaced()
	second.RecordOrderPlaced()

	if got := testutil.ToFloat64(first.ordersPlaced); got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}

// nil-метрики безопасны: все методы превращаются в no-op.
func TestOrderMetrics_NilSafe(t *testing.T) {
	var m *OrderMetrics
	m.RecordOrderPlaced()
	m.RecordOrderConfirmed()
	m.RecordOrderCancelled()
	m.RecordPlacementFailed("internal")
	m.RecordPlacementDuration(time.Second)
	m.RecordStatusTransition("PACKED")
	m.RecordOrderFinished()
}
