// Package metrics records pipeline counters and durations.
//
// Components receive a Recorder and default to NoopRecorder, so collection
// needs no nil checks. The CLI swaps in a PrometheusRecorder when a textfile
// path is configured and writes the gathered metrics once the run ends, in
// the node_exporter textfile collector format.
package metrics
