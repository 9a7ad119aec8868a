// Package codec turns raw bus messages into validated readings.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agro-telemetry-backend/internal/model"
)

// DecodeError marks a malformed bus message. The message is dropped, not
// retried.
type DecodeError struct {
	Topic  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %s", e.Topic, e.Reason)
}

// telemetryPayload is the wire shape published on agro/{machineId}/telemetry.
// The metric name and value are NOT checked against the closed metric set
// here; the bus path accepts what the machine sends, matching the HTTP path's
// stricter validation is an explicit non-goal of this layer.
type telemetryPayload struct {
	Metric string     `json:"metric"`
	Value  float64    `json:"value"`
	TS     *time.Time `json:"ts"`
}

// Decode parses a topic of the shape <namespace>/<machineId>/<suffix> and a
// JSON payload into a Reading. A missing ts falls back to receivedAt.
func Decode(topic string, payload []byte, receivedAt time.Time) (model.Reading, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return model.Reading{}, &DecodeError{Topic: topic, Reason: "topic must have at least three segments"}
	}

	machineID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return model.Reading{}, &DecodeError{Topic: topic, Reason: fmt.Sprintf("machine id segment %q is not numeric", parts[1])}
	}
	if machineID <= 0 {
		return model.Reading{}, &DecodeError{Topic: topic, Reason: fmt.Sprintf("machine id %d is not positive", machineID)}
	}

	var p telemetryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return model.Reading{}, &DecodeError{Topic: topic, Reason: fmt.Sprintf("payload is not valid JSON: %v", err)}
	}

	ts := receivedAt
	if p.TS != nil {
		ts = *p.TS
	}

	return model.Reading{
		MachineID: machineID,
		TS:        ts.UTC(),
		Metric:    p.Metric,
		Value:     p.Value,
	}, nil
}
