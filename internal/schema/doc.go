// Package schema defines the survey data model shared by the kiosk runtime
// and the authoring tools.
//
// A Schema is an ordered list of Questions plus global settings. Order is
// load-bearing: it defines the display sequence, and a Condition may only
// reference a question that appears earlier in the order.
//
// The JSON field names match the backend wire format exactly. Campaign
// snapshots are decoded with DecodeSchema; authoring files may also be
// written in YAML and decoded with DecodeSchemaYAML.
//
// Answer values are modeled as a small sealed union (StringValue, IntValue)
// instead of untyped interfaces. Legacy payloads wrap answers in a
// {"value": ...} object; unwrapping happens once, during decoding, so the
// rest of the system never sees the wrapped shape.
package schema
