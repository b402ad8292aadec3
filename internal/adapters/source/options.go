package source

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the HTTPSource.
type Option func(*HTTPSource)

// WithTimeout bounds each fetch, including body decoding.
func WithTimeout(timeout time.Duration) Option {
	return func(s *HTTPSource) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithNameField sets the JSON key holding the entity name.
func WithNameField(field string) Option {
	return func(s *HTTPSource) {
		if field != "" {
			s.nameField = field
		}
	}
}

// WithMetricField sets the JSON key holding the primary metric.
func WithMetricField(field string) Option {
	return func(s *HTTPSource) {
		if field != "" {
			s.metricField = field
		}
	}
}

// WithSecondaryFields sets the JSON keys read as secondary numeric fields.
func WithSecondaryFields(fields []string) Option {
	return func(s *HTTPSource) {
		s.secondaryFields = append([]string(nil), fields...)
	}
}

// WithMetaFields sets the JSON keys copied through as display metadata.
func WithMetaFields(fields []string) Option {
	return func(s *HTTPSource) {
		s.metaFields = append([]string(nil), fields...)
	}
}
