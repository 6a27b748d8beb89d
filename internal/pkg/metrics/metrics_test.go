package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.BookingsTotal)
	assert.NotNil(t, m.CancellationsTotal)
	assert.NotNil(t, m.SlotClaimDuration)
	assert.NotNil(t, m.ActiveBookings)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/locations", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/locations/:id/bookings", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/locations/:id/bookings", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestBookingsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("no_capacity").Inc()
	m.BookingsTotal.WithLabelValues("validation_error").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "bookings_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "bookings_total metric not found")
}

func TestSlotClaimDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.SlotClaimDuration.WithLabelValues("success").Observe(0.015)
	m.SlotClaimDuration.WithLabelValues("no_capacity").Observe(0.005)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "slot_claim_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found, "slot_claim_duration_seconds metric not found")
}

func TestActiveBookings(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ActiveBookings.WithLabelValues("booked").Inc()
	m.ActiveBookings.WithLabelValues("booked").Inc()
	m.ActiveBookings.WithLabelValues("booked").Dec() // 1つキャンセル

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "active_bookings" {
			found = true
			assert.Equal(t, 1, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "active_bookings metric not found")
}

func TestGet_ReturnsDefaultMetrics(t *testing.T) {
	// Initが呼ばれていない場合はnilを返す可能性がある
	m := Get()
	if m != nil {
		assert.NotNil(t, m.HTTPRequestsTotal)
	}
}

func TestInit_CreatesDefaultMetrics(t *testing.T) {
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// Initはデフォルトレジストリに登録するため、テストでは直接セット
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	defaultMetrics = m

	got := Get()
	assert.NotNil(t, got)
	assert.Equal(t, m, got)
}
