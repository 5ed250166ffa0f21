package scanloop

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/wayfarer-go/wayfarer/internal/scanloop"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
