// Package prometheus renders otpgate metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts an [otpgate.Engine] and exposes an
// [http.Handler] that renders every engine counter and histogram. Counter
// names are prefixed otpgate_*_total; the single histogram is
// otpgate_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
