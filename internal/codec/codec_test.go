package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidMessage(t *testing.T) {
	receivedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"metric":"temperature","value":22.5,"ts":"2024-03-01T11:30:00Z"}`)

	reading, err := Decode("agro/42/telemetry", payload, receivedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(42), reading.MachineID)
	assert.Equal(t, "temperature", reading.Metric)
	assert.Equal(t, 22.5, reading.Value)
	assert.Equal(t, time.Date(2024, 3, 1, 11, 30, 0, 0, time.UTC), reading.TS)
}

func TestDecodeDefaultsTimestampToReceiptTime(t *testing.T) {
	receivedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	reading, err := Decode("agro/7/telemetry", []byte(`{"metric":"rpm","value":1800}`), receivedAt)
	require.NoError(t, err)
	assert.Equal(t, receivedAt, reading.TS)
}

func TestDecodeRejectsBadTopics(t *testing.T) {
	receivedAt := time.Now().UTC()
	payload := []byte(`{"metric":"pressure","value":3.1}`)

	testCases := []struct {
		name  string
		topic string
	}{
		{"non-numeric machine id", "agro/tractor/telemetry"},
		{"negative machine id", "agro/-3/telemetry"},
		{"zero machine id", "agro/0/telemetry"},
		{"too few segments", "agro/telemetry"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.topic, payload, receivedAt)
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	_, err := Decode("agro/5/telemetry", []byte(`{not json`), time.Now().UTC())
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)

	_, err = Decode("agro/5/telemetry", []byte(`{"metric":"rpm","value":"fast"}`), time.Now().UTC())
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeDoesNotEnforceMetricSet(t *testing.T) {
	// The bus path accepts metric names outside the closed set; only the HTTP
	// write path enforces membership.
	reading, err := Decode("agro/9/telemetry", []byte(`{"metric":"humidity","value":55}`), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "humidity", reading.Metric)
}
