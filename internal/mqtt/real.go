package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// outboxCapacity bounds how many messages are held while the broker is
// unreachable. Blocking state changes are rare; 64 covers hours of
// outage.
const outboxCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Messages that
// cannot be delivered are buffered and replayed on reconnect.
type RealPublisher struct {
	client paho.Client

	mu     sync.Mutex
	outbox *outbox

	onReconcile func()
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{outbox: newOutbox(outboxCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("prayerlockd").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// PublishBlock sends a state-change event, buffering it if the broker
// is unreachable.
func (p *RealPublisher) PublishBlock(event BlockEvent) error {
	payload, err := FormatBlockPayload(event)
	if err != nil {
		return fmt.Errorf("format block payload: %w", err)
	}
	// QoS 1: the app ecosystem reacts to these (e.g. UI refresh).
	return p.publishOrBuffer(TopicBlock, payload, 1, false)
}

// PublishSystem sends a lifecycle event.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publishOrBuffer(TopicSystem, payload, 1, event.Retained)
}

func (p *RealPublisher) publishOrBuffer(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnected() {
		p.buffer(topic, payload, qos, retained)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.buffer(topic, payload, qos, retained)
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		p.buffer(topic, payload, qos, retained)
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *RealPublisher) buffer(topic string, payload []byte, qos byte, retained bool) {
	p.mu.Lock()
	p.outbox.push(outboxMsg{topic: topic, payload: payload, qos: qos, retained: retained})
	n := p.outbox.len()
	p.mu.Unlock()
	log.Printf("mqtt: broker unreachable, buffered message for %s (%d pending)", topic, n)
}

// onConnect replays buffered messages and restores the reconcile
// subscription (subscriptions do not survive reconnects with a clean
// session).
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	pending := p.outbox.drainAll()
	handler := p.onReconcile
	p.mu.Unlock()

	if len(pending) > 0 {
		log.Printf("mqtt: reconnected, replaying %d buffered messages", len(pending))
		for _, msg := range pending {
			token := client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
			token.WaitTimeout(5 * time.Second)
		}
	}

	if handler != nil {
		p.subscribe(handler)
	}
}

// SubscribeReconcile registers fn to run whenever a message arrives on
// the reconcile-command topic. Delivery is best-effort: the transport
// may drop messages, which is acceptable because the periodic timer is
// the consistency backstop.
func (p *RealPublisher) SubscribeReconcile(fn func()) error {
	p.mu.Lock()
	p.onReconcile = fn
	p.mu.Unlock()
	return p.subscribe(fn)
}

func (p *RealPublisher) subscribe(fn func()) error {
	token := p.client.Subscribe(TopicReconcile, 1, func(_ paho.Client, _ paho.Message) {
		fn()
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout on %s", TopicReconcile)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicReconcile, err)
	}
	return nil
}

// IsConnected reports whether the client is connected to the broker.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
