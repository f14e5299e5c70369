package models

import "encoding/json"

// Event is one caller-submitted JSON value, kept as raw bytes so it can be
// forwarded without losing number precision or key order.
type Event = json.RawMessage

// Record is the unit submitted to the stream. Records are built once per
// event and never mutated; retries resubmit the same values.
type Record struct {
	Payload      []byte
	PartitionKey string
}

// Result is the per-record outcome of one batch submission.
// A non-empty ErrorCode marks the record as failed.
type Result struct {
	SequenceNumber string
	ShardID        string
	ErrorCode      string
	ErrorMessage   string
}

// Failed reports whether the record at this position was rejected.
func (r Result) Failed() bool {
	return r.ErrorCode != ""
}

// Outcome is the result of one batch submission.
// Results has the same length and order as the records that produced it.
type Outcome struct {
	FailedCount int
	Results     []Result
}

// Response is the JSON body returned for every request.
// FailedElements is only set when some events could not be published.
type Response struct {
	Message        string            `json:"message"`
	FailedElements []json.RawMessage `json:"failedElements,omitempty"`
}
