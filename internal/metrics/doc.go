// Package metrics records build observations.
//
// Components receive a Recorder and default to NoopRecorder, so nothing needs
// a nil check:
//
//	builder := autodoc.NewBuilder(cfg, autodoc.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The CLI's --metrics-file flag writes the registry in the Prometheus text
// format once the build finishes.
package metrics
