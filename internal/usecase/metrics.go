package usecase

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "knowledge-qa/usecase"

// answerMetrics contains the instruments recorded by the grounded-answer service.
// Instruments come from the global meter, so they are no-ops until a provider is installed.
type answerMetrics struct {
	answersTotal    metric.Int64Counter
	sourcesRepaired metric.Int64Counter
	gatewayDuration metric.Float64Histogram
}

func newAnswerMetrics() (*answerMetrics, error) {
	meter := otel.Meter(instrumentationName)

	answersTotal, err := meter.Int64Counter("qa_answers_total",
		metric.WithDescription("Total number of answer attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	sourcesRepaired, err := meter.Int64Counter("qa_sources_repaired_total",
		metric.WithDescription("Total number of citations rewritten to the unknown_id sentinel"),
	)
	if err != nil {
		return nil, err
	}

	gatewayDuration, err := meter.Float64Histogram("qa_gateway_duration_seconds",
		metric.WithDescription("Model gateway round trip duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &answerMetrics{
		answersTotal:    answersTotal,
		sourcesRepaired: sourcesRepaired,
		gatewayDuration: gatewayDuration,
	}, nil
}
