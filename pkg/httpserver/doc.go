// Package httpserver wraps net/http with context-driven graceful shutdown
// and readiness probes.
//
// The Server runs until its context is cancelled, then drains in-flight
// requests within a configurable deadline. Signal handling stays in the
// binary (signal.NotifyContext), so Run composes cleanly with an errgroup
// alongside other long-running components:
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// HealthHandler serves both probe styles: with no checks it reports
// liveness, with checks it reports readiness and runs every probe against
// the request context.
//
// Listen failures wrap ErrStart and shutdown failures wrap ErrShutdown,
// distinguishable with errors.Is.
package httpserver
