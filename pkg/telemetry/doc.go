// Package telemetry provides observability instrumentation for pagedata.
//
// It integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry) and metrics (Prometheus).
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
//	logger := tel.Logger.NewComponentLogger("datagetter")
//	logger = logger.WithPageURI(pageURI).WithDataGetterURI(dgURI)
//	logger.Debug("data getter skipped")
//	logger.WithError(err).Warn("data getter failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Each page resolution gets a "page.resolve" span with one
// "datagetter.resolve" child per link:
//
//	ctx, span := tel.Tracer.StartPageSpan(ctx, pageURI, resolutionID)
//	defer span.End()
//
// Supported exporters: otlp (gRPC), stdout, none.
//
// # Metrics
//
//	tel.Metrics.RecordLinksEnumerated(len(links))
//	tel.Metrics.RecordLinkSkipped(telemetry.SkipNoUsableType)
//	tel.Metrics.RecordPageResolution("ok", duration)
//
// Metrics are served by the HTTP server at the configured path
// (default /metrics). When metrics are disabled every Record method is a
// no-op.
package telemetry
