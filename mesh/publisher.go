package mesh

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher publishes alignment reports to MQTT
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	last          *Report
	mu            sync.RWMutex
}

// NewPublisher creates a new report publisher
// If client is nil, publishing is disabled (for testing)
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if env := os.Getenv("MQTT_PUBLISH_PREFIX"); env != "" {
		prefix = env
	}
	if prefix == "" {
		prefix = "beaconmesh"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           1,
		retain:        true, // late subscribers get the latest result
	}
}

// PublishReport publishes the run summary to {prefix}/result and each
// scanner's pose to {prefix}/scanner/{id}
func (p *Publisher) PublishReport(r *Report) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	p.mu.Lock()
	p.last = r
	p.mu.Unlock()

	if err := p.publishJSON(fmt.Sprintf("%s/result", p.publishPrefix), r); err != nil {
		log.Printf("[MQTT] Error publishing result %s: %v", r.RunID, err)
		return err
	}

	for _, s := range r.Scanners {
		topic := fmt.Sprintf("%s/scanner/%d", p.publishPrefix, s.ID)
		if err := p.publishJSON(topic, s); err != nil {
			log.Printf("[MQTT] Error publishing scanner %d: %v", s.ID, err)
			return err
		}
	}

	log.Printf("[MQTT] Published run %s: %d beacons, max separation %d, %d scanners",
		r.RunID, r.UniqueBeacons, r.MaxSeparation, len(r.Scanners))
	return nil
}

func (p *Publisher) publishJSON(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", topic, err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// LastReport returns the most recently published report
func (p *Publisher) LastReport() (*Report, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.last != nil
}

// Prefix returns the topic prefix in use
func (p *Publisher) Prefix() string {
	return p.publishPrefix
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
