package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.IncrAccessDenied("borrower", "list", "list_for_partner_or_superuser")
	assert.Equal(t, float64(1), testutil.ToFloat64(a.accessDenied.WithLabelValues("borrower", "list", "list_for_partner_or_superuser")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.accessDenied.WithLabelValues("borrower", "list", "list_for_partner_or_superuser")))
}

func TestRecordMatchJob(t *testing.T) {
	m := NewMetrics()
	m.RecordMatchJob("ok", 3, 10*time.Millisecond)
	m.RecordMatchJob("absent", 0, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.matchJobs.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.matchJobs.WithLabelValues("absent")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.requestsCreated))
}
