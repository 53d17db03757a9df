package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"OmniTrade/internal/domain/models"
	domrepo "OmniTrade/internal/domain/repository"

	"github.com/go-playground/validator/v10"
)

// MetricsHandler applies system metrics published on a Kafka topic.
// Payload: {"drawdown":..,"correlationStress":..,"exposure":..}.
type MetricsHandler struct {
	topic     string
	dashboard *Dashboard
	metrics   domrepo.Metrics
	validate  *validator.Validate
}

func NewMetricsHandler(topic string, d *Dashboard, metrics domrepo.Metrics) *MetricsHandler {
	return &MetricsHandler{topic: topic, dashboard: d, metrics: metrics, validate: validator.New()}
}

func (h *MetricsHandler) Topic() string { return h.topic }

func (h *MetricsHandler) Handle(ctx context.Context, b []byte) error {
	start := time.Now()
	var m models.MetricsRequest
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("metrics_unmarshal")
		return fmt.Errorf("decode metrics: %w", err)
	}
	if err := h.validate.StructCtx(ctx, &m); err != nil {
		h.metrics.RecordError("metrics_invalid")
		return fmt.Errorf("invalid metrics: %w", err)
	}
	h.dashboard.SetMetrics(m.SystemMetrics())
	h.metrics.RecordLatency("metrics_apply", time.Since(start).Seconds())
	return nil
}
