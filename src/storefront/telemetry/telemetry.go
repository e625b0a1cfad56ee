// Package telemetry installs the global OpenTelemetry tracer and meter
// providers used by the storefront.
package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Options selects the exporters. With no endpoint and Stdout unset, spans
// and metrics are recorded but never exported.
type Options struct {
	ServiceName    string
	ServiceVersion string
	// OTLPEndpoint is the collector's gRPC address, e.g. otel-collector:4317.
	OTLPEndpoint string
	Stdout       bool
	StdoutWriter io.Writer
	// MetricInterval defaults to 10s.
	MetricInterval time.Duration
}

// Shutdown flushes and stops the providers.
type Shutdown func(ctx context.Context) error

// Init builds the providers, registers them globally together with the
// TraceContext and B3 propagators and returns their shutdown hook.
func Init(ctx context.Context, opts Options) (Shutdown, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "storefront"
	}
	if opts.ServiceVersion == "" {
		opts.ServiceVersion = "v1.0.0"
	}
	if opts.MetricInterval <= 0 {
		opts.MetricInterval = 10 * time.Second
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.ServiceName),
			semconv.ServiceVersionKey.String(opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create resource")
	}

	tp, err := newTracerProvider(ctx, res, opts)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, res, opts)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(Propagator())

	return func(ctx context.Context) error {
		terr := tp.Shutdown(ctx)
		merr := mp.Shutdown(ctx)
		if terr != nil {
			return errors.Wrap(terr, "shutdown tracer provider")
		}
		if merr != nil {
			return errors.Wrap(merr, "shutdown meter provider")
		}
		return nil
	}, nil
}

// Propagator returns the composite propagator installed by Init.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
		b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader)),
	)
}

func newTracerProvider(ctx context.Context, res *resource.Resource, opts Options) (*sdktrace.TracerProvider, error) {
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
	}
	if opts.OTLPEndpoint != "" {
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(opts.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "create OTLP trace exporter")
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	if opts.Stdout {
		stdoutOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if opts.StdoutWriter != nil {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithWriter(opts.StdoutWriter))
		}
		exporter, err := stdouttrace.New(stdoutOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "create stdout trace exporter")
		}
		tpOpts = append(tpOpts, sdktrace.WithSyncer(exporter))
	}
	return sdktrace.NewTracerProvider(tpOpts...), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, opts Options) (*sdkmetric.MeterProvider, error) {
	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if opts.OTLPEndpoint != "" {
		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(opts.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "create OTLP metric exporter")
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(opts.MetricInterval)),
		))
	}
	return sdkmetric.NewMeterProvider(mpOpts...), nil
}
