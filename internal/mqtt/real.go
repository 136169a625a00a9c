package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectWait    = 3 * time.Second
	publishWait    = 5 * time.Second
	closeWait      = 2 * time.Second
	queueSize      = 64
	bufferCapacity = 256
)

// client is the subset of paho.Client the publisher uses.
type client interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// RealPublisher publishes to an MQTT broker from a background worker.
// Publish calls only enqueue; while the broker is unreachable messages are
// kept in a ring buffer and replayed after reconnecting.
type RealPublisher struct {
	client client

	queue       chan bufferedMsg
	reconnected chan struct{}
	done        chan struct{}

	// buffer is touched only by the worker goroutine.
	buffer *outbox

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewRealPublisher creates a publisher for broker. If the broker cannot be
// reached within a short wait, the client keeps retrying in the background
// and messages are buffered meanwhile.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	var p *RealPublisher
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("pipboy-mini").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(willPayload()), 1, true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		}).
		SetOnConnectHandler(func(paho.Client) {
			if p != nil {
				p.signalReconnect()
			}
		})

	c := paho.NewClient(opts)
	p = newPublisher(c)

	token := c.Connect()
	if token.WaitTimeout(connectWait) {
		if err := token.Error(); err != nil {
			return nil, fmt.Errorf("connect to broker: %w", err)
		}
	} else {
		log.Printf("mqtt: %s not reachable yet, buffering until connected", broker)
	}

	go p.run()
	return p, nil
}

func newPublisher(c client) *RealPublisher {
	return &RealPublisher{
		client:      c,
		queue:       make(chan bufferedMsg, queueSize),
		reconnected: make(chan struct{}, 1),
		done:        make(chan struct{}),
		buffer:      newOutbox(bufferCapacity),
	}
}

// PublishSystem enqueues a lifecycle event. QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.enqueue(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// PublishPlayback enqueues a playback change. QoS 0.
func (p *RealPublisher) PublishPlayback(event PlaybackEvent) error {
	payload, err := FormatPlaybackPayload(event)
	if err != nil {
		return fmt.Errorf("format playback payload: %w", err)
	}
	return p.enqueue(bufferedMsg{topic: TopicPlayback, payload: payload})
}

func (p *RealPublisher) enqueue(msg bufferedMsg) error {
	if p.closed.Load() {
		return errors.New("publisher closed")
	}
	select {
	case p.queue <- msg:
		return nil
	default:
		return errors.New("publish queue full")
	}
}

func (p *RealPublisher) signalReconnect() {
	select {
	case p.reconnected <- struct{}{}:
	default:
	}
}

// IsConnected reports whether the client has an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

func (p *RealPublisher) run() {
	defer close(p.done)
	for {
		select {
		case msg, ok := <-p.queue:
			if !ok {
				return
			}
			p.handle(msg)
		case <-p.reconnected:
			p.replay()
		}
	}
}

// handle sends msg, or buffers it behind anything still waiting.
func (p *RealPublisher) handle(msg bufferedMsg) {
	if !p.client.IsConnectionOpen() {
		p.buffer.push(msg)
		return
	}
	if p.buffer.len() > 0 {
		p.replay()
		if p.buffer.len() > 0 {
			p.buffer.push(msg)
			return
		}
	}
	if err := p.send(msg); err != nil {
		log.Printf("mqtt: %v", err)
		p.buffer.push(msg)
	}
}

// replay sends buffered messages oldest first, stopping at the first failure.
// A message leaves the buffer only once the broker has acknowledged it.
func (p *RealPublisher) replay() {
	sent, dropped := 0, p.buffer.dropped
	for {
		msg, ok := p.buffer.front()
		if !ok || !p.client.IsConnectionOpen() {
			break
		}
		if err := p.send(msg); err != nil {
			log.Printf("mqtt: replay: %v", err)
			break
		}
		p.buffer.pop()
		sent++
	}
	if sent > 0 {
		log.Printf("mqtt: replayed %d buffered messages (%d dropped while offline)", sent, dropped)
	}
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishWait) {
		return fmt.Errorf("publish %s timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// Close stops accepting messages, lets the worker drain the queue for a
// short while and disconnects.
func (p *RealPublisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.queue)
		select {
		case <-p.done:
		case <-time.After(closeWait):
			err = errors.New("timed out flushing publish queue")
		}
		p.client.Disconnect(1000) // 1 second quiesce
	})
	return err
}
