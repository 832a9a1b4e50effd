package mesh

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ScanHandler is called for every scanner report received over MQTT.
// rawPayload is always set; scanners is nil when err is non-nil.
type ScanHandler func(scanners []Scanner, rawPayload []byte, err error)

// MQTTClient manages the MQTT connection and the scanner report subscription
type MQTTClient struct {
	client      mqtt.Client
	config      *Config
	scanHandler ScanHandler
	isConnected bool
	mu          sync.RWMutex
}

// InitMQTT creates an MQTT client with the provided configuration and starts
// connecting in the background. If no broker is configured, MQTT is
// disabled and this returns nil.
func InitMQTT(config *Config, handler ScanHandler) (*MQTTClient, error) {
	if config == nil {
		return nil, fmt.Errorf("MQTT requires a configuration")
	}

	broker := config.ResolveBroker()
	if broker == "" {
		log.Println("[MQTT] disabled: MQTT_BROKER not set")
		return nil, nil
	}

	if config.MQTT.InputTopic == "" {
		return nil, fmt.Errorf("MQTT enabled but mqtt.inputTopic is empty")
	}

	client := &MQTTClient{
		config:      config,
		scanHandler: handler,
	}

	client.client = mqtt.NewClient(client.clientOptions(broker))

	go client.connectWithRetry()

	return client, nil
}

// clientOptions builds the paho options for broker. Messages are not
// delivered in order; AutoAligner serializes the alignment runs itself.
func (c *MQTTClient) clientOptions(broker string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" {
		clientID = c.config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "beaconmesh"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" {
		username = c.config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" {
			password = c.config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false) // keep the subscription across reconnects
	opts.SetOrderMatters(false) // each report is handled on its own goroutine

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(c.onReconnecting)
	return opts
}

// connectWithRetry attempts to connect to the MQTT broker with exponential backoff
func (c *MQTTClient) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("[MQTT] Connecting to broker...")

		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("[MQTT] Connected to broker")
				c.setConnected(true)
				return
			}
			log.Printf("[MQTT] connection failed: %v", token.Error())
		} else {
			log.Println("[MQTT] connection timeout")
		}

		log.Printf("[MQTT] Retrying connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

// onConnect subscribes to the input topic whenever the connection comes up
func (c *MQTTClient) onConnect(client mqtt.Client) {
	c.setConnected(true)

	topic := c.config.MQTT.InputTopic
	log.Printf("[MQTT] connected, subscribing to %s", topic)
	token := client.Subscribe(topic, 1, c.createMessageHandler())
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("[MQTT] Error subscribing to %s: %v", topic, token.Error())
		return
	}
	log.Printf("[MQTT] Subscribed to %s", topic)
}

// onConnectionLost is called when the MQTT connection is lost
// Auto-reconnect is enabled, so this is typically a transient event
func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("[MQTT] connection interrupted (%v), auto-reconnect will retry", err)
	c.setConnected(false)
}

func (c *MQTTClient) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Println("[MQTT] reconnecting...")
}

// createMessageHandler decodes each payload as a scanner report
func (c *MQTTClient) createMessageHandler() mqtt.MessageHandler {
	return func(client mqtt.Client, msg mqtt.Message) {
		payload := msg.Payload()
		log.Printf("[MQTT] Received scanner report (topic: %s, size: %d bytes)", msg.Topic(), len(payload))

		scanners, err := DecodeScanPayload(payload)
		if err != nil {
			log.Printf("[MQTT] Error parsing scanner report: %v", err)
			if c.scanHandler != nil {
				c.scanHandler(nil, payload, err)
			}
			return
		}

		if c.scanHandler != nil {
			c.scanHandler(scanners, payload, nil)
		}
	}
}

// IsConnected returns true if the MQTT client is connected
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

func (c *MQTTClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// Disconnect gracefully closes the MQTT connection
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("[MQTT] Disconnecting from broker...")
		c.client.Disconnect(250)
		c.setConnected(false)
	}
}

// GetClient returns the underlying MQTT client for publishing
func (c *MQTTClient) GetClient() mqtt.Client {
	return c.client
}

// newMQTTClientWithMock creates an MQTTClient around a provided mqtt.Client
// This is used for testing with mock clients
func newMQTTClientWithMock(client mqtt.Client, config *Config, handler ScanHandler) *MQTTClient {
	return &MQTTClient{
		client:      client,
		config:      config,
		scanHandler: handler,
	}
}
