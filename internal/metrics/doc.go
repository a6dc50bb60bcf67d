// Package metrics provides the observability hooks for rewrite runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	p := rewrite.New(rewrite.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The Prometheus implementation registers its collectors on the registry it is
// given; HTTPHandler exposes that registry for scraping in watch mode.
package metrics
