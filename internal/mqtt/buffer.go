package mqtt

import (
	"log"
	"slices"
)

// bufferedMsg is a serialized MQTT message waiting to be sent.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a bounded FIFO of messages held while the broker is unreachable.
// When full, the oldest non-retained message is evicted first so the latest
// lifecycle state survives a long outage. Owned by the publisher's worker.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int // evictions since the outbox was last emptied
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
	}
}

func (o *outbox) push(msg bufferedMsg) {
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping", o.capacity)
		}
		o.dropped++
		victim := slices.IndexFunc(o.msgs, func(m bufferedMsg) bool { return !m.retained })
		if victim < 0 {
			victim = 0
		}
		o.msgs = slices.Delete(o.msgs, victim, victim+1)
	}
	o.msgs = append(o.msgs, msg)
}

// front returns the oldest message without removing it.
func (o *outbox) front() (bufferedMsg, bool) {
	if len(o.msgs) == 0 {
		return bufferedMsg{}, false
	}
	return o.msgs[0], true
}

// pop removes the oldest message.
func (o *outbox) pop() {
	if len(o.msgs) == 0 {
		return
	}
	o.msgs = slices.Delete(o.msgs, 0, 1)
	if len(o.msgs) == 0 {
		o.dropped = 0
	}
}

func (o *outbox) len() int {
	return len(o.msgs)
}
