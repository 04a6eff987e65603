// Package observability records timer events to an append-only JSONL log and
// derives usage metrics and alerts (long-running sessions, heavy context
// switching) from it.
package observability
