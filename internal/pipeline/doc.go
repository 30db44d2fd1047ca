// Package pipeline delivers completed survey responses to the backend,
// falling back to the durable queue when delivery fails.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All queue access happens in one goroutine, the Run loop. New submissions,
// connectivity changes, and flush requests are events; external callers
// enqueue them and the loop processes them in FIFO order. Serializing
// through one owner removes the append-vs-flush race on the durable queue
// entirely - there is no interleaving to reason about.
//
// Delivery semantics are at-least-once:
//   - A failed submit is queued and reported to the user as success
//     ("saved offline" is not a user-visible failure).
//   - A flush resends queued items in FIFO order; items that fail stay
//     queued in their original relative order.
//   - A resend may duplicate a submission whose first attempt actually
//     reached the backend (e.g. the response timed out on the way back).
//     Deduplication is the backend's responsibility.
//
// There is no cancellation of an in-flight call; the API client's timeout
// bounds each attempt.
package pipeline
