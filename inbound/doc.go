// Package inbound receives NEO callback deliveries: it resolves the trigger
// instance, authenticates the request and hands the resulting event to the
// host sink.
package inbound
