package usecase

import (
	"context"
	"testing"

	"OmniTrade/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerAppliesPayload(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})
	h := NewMetricsHandler("omnitrade.metrics", f.dash, metrics.Nop{})
	assert.Equal(t, "omnitrade.metrics", h.Topic())

	err := h.Handle(context.Background(), []byte(`{"drawdown":5,"correlationStress":0.2,"exposure":30}`))
	require.NoError(t, err)
	f.dash.Wait()

	snap := f.dash.Snapshot()
	assert.Equal(t, 90, snap.Health)
	assert.Equal(t, 30.0, snap.Metrics.Exposure)
}

func TestMetricsHandlerRejectsBadPayloads(t *testing.T) {
	f := newFixture(t, &instantAdvisor{})
	h := NewMetricsHandler("m", f.dash, metrics.Nop{})

	assert.Error(t, h.Handle(context.Background(), []byte(`{not json`)))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"drawdown":-1}`)))
	assert.Equal(t, uint64(0), f.dash.Snapshot().Version)
}
