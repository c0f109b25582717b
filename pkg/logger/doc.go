// Package logger provides structured logging for the interactpsql tools.
//
// It wraps Uber's zap with a small, uniform method set: every level takes a
// message, an optional error and optional field maps.
//
// Basic Usage:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		ServiceName:   "interactpsql",
//		EnableTracing: true,
//	})
//
//	log.Info("Connected", nil, map[string]interface{}{"host": "localhost"})
//	log.WarnWithContext(ctx, "Row skipped", nil, map[string]interface{}{"row": 3})
//
// The *WithContext methods add trace_id and span_id when EnableTracing is set
// and ctx carries a valid OpenTelemetry span.
//
// Configuration:
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_SERVICE_NAME=importer    # value of the "service" field
//	LOGGER_ENABLE_TRACING=true      # add trace/span ids to context-aware entries
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config { return cfg.Logger }),
//	)
package logger
