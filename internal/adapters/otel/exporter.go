package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/experimenter/internal/ports"
)

const (
	serviceName    = "experimenter"
	serviceVersion = "1.0.0"
)

// Exporter exports publishing metrics to an OTEL Collector.
type Exporter struct {
	provider       *sdkmetric.MeterProvider
	meter          metric.Meter
	publishedTotal metric.Int64Counter
	branchesHist   metric.Int64Histogram
	bucketsHist    metric.Int64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	publishedTotal, err := meter.Int64Counter(
		"experimenter_recipes_published_total",
		metric.WithDescription("Recipe publish attempts by outcome"),
		metric.WithUnit("{recipe}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	branchesHist, err := meter.Int64Histogram(
		"experimenter_recipe_branches",
		metric.WithDescription("Number of branches per published recipe"),
		metric.WithUnit("{branch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating branches histogram: %w", err)
	}

	bucketsHist, err := meter.Int64Histogram(
		"experimenter_recipe_bucket_count",
		metric.WithDescription("Buckets allocated to each published recipe"),
		metric.WithUnit("{bucket}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating buckets histogram: %w", err)
	}

	return &Exporter{
		provider:       provider,
		meter:          meter,
		publishedTotal: publishedTotal,
		branchesHist:   branchesHist,
		bucketsHist:    bucketsHist,
	}, nil
}

// RecordPublish records one publish attempt.
func (e *Exporter) RecordPublish(ctx context.Context, ev *ports.PublishEvent) error {
	attrs := []attribute.KeyValue{
		attribute.String("experiment_type", ev.ExperimentType),
		attribute.String("audience", ev.Audience),
		attribute.String("outcome", ev.Outcome),
	}
	if ev.Namespace != "" {
		attrs = append(attrs, attribute.String("namespace", ev.Namespace))
	}
	opt := metric.WithAttributes(attrs...)

	e.publishedTotal.Add(ctx, 1, opt)
	if ev.Outcome != "published" {
		return nil
	}
	e.branchesHist.Record(ctx, int64(ev.BranchCount), opt)
	e.bucketsHist.Record(ctx, int64(ev.BucketCount), opt)
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
