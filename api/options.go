package api

import "github.com/AntonStoeckl/hal-books-api/bookstore"

// Option defines a functional option for configuring Server.
type Option func(*Server) error

// WithBasePath mounts all routes below basePath, for example "/api".
func WithBasePath(basePath string) Option {
	return func(s *Server) error {
		urls, err := NewURLGenerator(basePath)
		if err != nil {
			return err
		}

		s.urls = urls

		return nil
	}
}

// WithLogger sets the logger for access logs and failures.
func WithLogger(logger bookstore.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a logger that also receives the request context.
func WithContextualLogger(logger bookstore.ContextualLogger) Option {
	return func(s *Server) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the collector for request durations and counts per route.
func WithMetrics(collector bookstore.MetricsCollector) Option {
	return func(s *Server) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the collector that opens one span per routed request.
func WithTracing(collector bookstore.TracingCollector) Option {
	return func(s *Server) error {
		s.tracingCollector = collector
		return nil
	}
}
