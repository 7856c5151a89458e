package mqtt

import "log"

// outboxMsg stores a serialized MQTT message for replay after reconnection.
type outboxMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO holding messages while the broker is
// unreachable. On overflow, lifecycle messages are evicted before
// state-change messages: a stale heartbeat is worthless, a missed
// BLOCK_ACTIVATED is not. Not safe for concurrent use — caller must
// synchronize.
type outbox struct {
	buf      []outboxMsg
	capacity int
	dropped  bool // true if any message was dropped since last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{capacity: capacity}
}

func (o *outbox) push(msg outboxMsg) {
	if len(o.buf) == o.capacity {
		o.evict()
	}
	o.buf = append(o.buf, msg)
}

// evict drops the oldest lifecycle message, falling back to the oldest
// message overall when only state changes remain.
func (o *outbox) evict() {
	if !o.dropped {
		log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.capacity)
		o.dropped = true
	}
	for i, m := range o.buf {
		if m.topic == TopicSystem {
			o.buf = append(o.buf[:i], o.buf[i+1:]...)
			return
		}
	}
	o.buf = o.buf[1:]
}

// drainAll returns all buffered messages oldest-first and empties the
// outbox.
func (o *outbox) drainAll() []outboxMsg {
	if len(o.buf) == 0 {
		return nil
	}
	result := o.buf
	o.buf = nil
	o.dropped = false
	return result
}

func (o *outbox) len() int {
	return len(o.buf)
}
