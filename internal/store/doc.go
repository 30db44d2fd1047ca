// Package store provides SQLite-backed durable local state for a kiosk
// device.
//
// Two pieces of state survive restarts:
//   - The pending-submission queue: responses that could not be delivered,
//     kept in FIFO order under a single key as one serialized JSON array.
//   - The last-chosen display language.
//
// The queue lives in a single value, so loading is all-or-nothing and a
// corrupt value reads as an empty queue instead of failing the session.
// Items are removed only after the backend confirmed the resend,
// so delivery is at-least-once; deduplication is the backend's concern.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
package store
