// Package watch contains the monitoring core: the transition detector that
// turns raw presence observations into notifiable events, the poll cycle
// that drives the presence source for every favorite, and the lifecycle
// guard that decides whether the watcher may start at all.
//
// Everything in this package is built to absorb failure locally. A failed
// observation never mutates stored state, a failed save is retried on the
// next cycle, and a failed notification is logged and dropped. Only
// explicit cancellation stops the loop.
package watch
