// Package app wires the salespulse web service together and manages its
// lifecycle.
//
// NewApplication builds, in order:
//
//	1. OpenTelemetry providers and the business metrics
//	2. the analysis runner and forecasting engine
//	3. the chi router with middleware and API routes
//	4. the HTTP server with the configured timeouts
//
// Usage:
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return application.Run(ctx)
//
// Run returns once ctx is cancelled and in-flight requests have drained or
// the shutdown timeout has passed. The package never calls os.Exit.
package app
