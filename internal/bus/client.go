// Package bus maintains the MQTT subscription that feeds telemetry ingestion.
package bus

import (
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// connectTimeout bounds the initial broker dial. With connect retry enabled the
// token stays pending while the broker is down, so the wait expiring is the
// only failure signal we get.
var connectTimeout = 15 * time.Second

// Client wraps the paho MQTT client with the connection policy this service
// uses: auto-reconnect, connect retry, QoS 1 subscriptions.
type Client struct {
	client mqtt.Client
}

// MessageHandler receives one inbound bus message.
type MessageHandler func(topic string, payload []byte)

// Connect dials the broker and blocks until the connection is established or
// times out. An empty clientID gets a random suffix so multiple instances do
// not evict each other.
func Connect(brokerURL, clientID string) (*Client, error) {
	url := strings.TrimSpace(brokerURL)
	if strings.HasPrefix(url, "mqtt://") {
		url = "tcp://" + strings.TrimPrefix(url, "mqtt://")
	}

	if strings.TrimSpace(clientID) == "" {
		clientID = "agro-telemetry-" + uuid.NewString()[:8]
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(url)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if ok := tok.WaitTimeout(connectTimeout); !ok {
		// A pending retry token carries no error, so synthesize one; the
		// caller must never see (nil, nil).
		c.Disconnect(0)
		return nil, fmt.Errorf("timed out connecting to broker %s after %s", url, connectTimeout)
	}
	if err := tok.Error(); err != nil {
		return nil, err
	}
	return &Client{client: c}, nil
}

// Subscribe registers handler for the topic pattern at QoS 1.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	tok := c.client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	tok.Wait()
	return tok.Error()
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (c *Client) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Disconnect(1000)
}
