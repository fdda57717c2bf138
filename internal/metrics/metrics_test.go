package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Observe("image", 2*time.Second)
	m.Observe("image", time.Second)
	m.Observe("failed", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Generations.WithLabelValues("image")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("failed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Generations))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}
