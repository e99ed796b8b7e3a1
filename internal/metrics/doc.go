// Package metrics provides observability hooks for the watcher loop.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks at call
// sites. The Prometheus implementation registers against a caller-supplied
// registry and is exposed by the daemon's /metrics endpoint.
package metrics
