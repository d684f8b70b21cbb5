// Package middleware provides built-in middleware for the pulse
// emitter: structured logging of every emission and a sliding-window
// rate limiter.
//
// Both are ordinary emitter.Middleware implementations; applications
// register them with Use like any other interceptor:
//
//	em := emitter.New(emitter.WithLogger(logger))
//	em.Use(middleware.NewLogging(logger))
//	em.Use(middleware.NewRateLimit(100, time.Minute))
package middleware
