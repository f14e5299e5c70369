package stream

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/PratikDhanave/event-collector/internal/models"
)

// Encoder turns events into stream records.
//
// NewlineDelimited appends "\n" to every payload so downstream consumers can
// read concatenated records as newline-delimited JSON.
type Encoder struct {
	NewlineDelimited bool
}

// Encode builds one record per event, in order. Payloads are compacted JSON;
// partition keys are fresh random UUIDs.
//
// Events are expected to be valid JSON (the schema validator guarantees it).
// An event that fails to compact is forwarded byte-for-byte.
func (e Encoder) Encode(events []models.Event) []models.Record {
	records := make([]models.Record, 0, len(events))
	for _, ev := range events {
		var buf bytes.Buffer
		if err := json.Compact(&buf, ev); err != nil {
			buf.Reset()
			buf.Write(ev)
		}
		if e.NewlineDelimited {
			buf.WriteByte('\n')
		}
		records = append(records, models.Record{
			Payload:      buf.Bytes(),
			PartitionKey: uuid.NewString(),
		})
	}
	return records
}

// Decode returns the event a record was built from.
func Decode(r models.Record) models.Event {
	return models.Event(bytes.TrimRight(r.Payload, "\n"))
}
