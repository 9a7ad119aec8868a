package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectUnreachableBrokerReturnsError(t *testing.T) {
	orig := connectTimeout
	connectTimeout = 200 * time.Millisecond
	t.Cleanup(func() { connectTimeout = orig })

	client, err := Connect("tcp://127.0.0.1:1", "connect-test")

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestConnectNormalizesMQTTScheme(t *testing.T) {
	orig := connectTimeout
	connectTimeout = 200 * time.Millisecond
	t.Cleanup(func() { connectTimeout = orig })

	// mqtt:// is rewritten to tcp:// before dialing; the error names the
	// rewritten address.
	_, err := Connect("mqtt://127.0.0.1:1", "connect-test")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tcp://127.0.0.1:1")
}
