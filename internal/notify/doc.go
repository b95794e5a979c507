// Package notify provides quadstore observers that forward notifications
// to Prometheus counters, a NATS subject hierarchy and slog.
package notify
