// Package messagebusmqtt provides an MQTT-backed message bus. Events are
// published as JSON on one topic per event type below a configurable prefix,
// so external consumers can follow the repository's lifecycle traffic and
// multiple service instances can share one broker.
package messagebusmqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/messagebus"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 10 * time.Second
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type MQTTMessageBus struct {
	client pahomqtt.Client
	cfg    common.MQTTConfig

	mu            sync.RWMutex
	subscriptions map[messagebus.SubscriptionID]mqttSubscription
}

type mqttSubscription struct {
	eventTypes []messagebus.EventType
	handler    messagebus.Handler
}

// NewMQTTMessageBus connects to the broker and returns the bus.
func NewMQTTMessageBus(cfg common.MQTTConfig) (*MQTTMessageBus, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	bus := &MQTTMessageBus{
		cfg:           cfg,
		subscriptions: make(map[messagebus.SubscriptionID]mqttSubscription),
	}

	opts.SetOnConnectHandler(func(pahomqtt.Client) {
		// broker connections can drop; re-establish topic subscriptions
		bus.resubscribe()
	})

	bus.client = pahomqtt.NewClient(opts)
	token := bus.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect: timeout after %v", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return bus, nil
}

func (b *MQTTMessageBus) topic(eventType messagebus.EventType) string {
	return fmt.Sprintf("%s/%s", b.cfg.TopicPrefix, eventType)
}

// Publish sends the event to the topic of its type
func (b *MQTTMessageBus) Publish(msg messagebus.EventMessage) error {
	payload, err := jsonAPI.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	token := b.client.Publish(b.topic(msg.Type), byte(b.cfg.QoS), false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish: timeout after %v", publishTimeout)
	}
	return token.Error()
}

// Subscribe registers a handler for the given event types
func (b *MQTTMessageBus) Subscribe(eventTypes []messagebus.EventType, handler messagebus.Handler) (messagebus.SubscriptionID, error) {
	if handler == nil {
		return "", fmt.Errorf("subscribe: handler must not be nil")
	}
	if len(eventTypes) == 0 {
		return "", fmt.Errorf("subscribe: at least one event type required")
	}

	id := messagebus.SubscriptionID(uuid.NewString())

	b.mu.Lock()
	b.subscriptions[id] = mqttSubscription{eventTypes: eventTypes, handler: handler}
	b.mu.Unlock()

	for _, eventType := range eventTypes {
		if err := b.subscribeTopic(eventType); err != nil {
			b.mu.Lock()
			delete(b.subscriptions, id)
			b.mu.Unlock()
			return "", err
		}
	}
	return id, nil
}

func (b *MQTTMessageBus) subscribeTopic(eventType messagebus.EventType) error {
	token := b.client.Subscribe(b.topic(eventType), byte(b.cfg.QoS), func(_ pahomqtt.Client, raw pahomqtt.Message) {
		var msg messagebus.EventMessage
		if err := jsonAPI.Unmarshal(raw.Payload(), &msg); err != nil {
			log.Printf("⚠️  Dropping malformed event on %s: %v", raw.Topic(), err)
			return
		}
		b.dispatch(msg)
	})
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt subscribe: timeout after %v", connectTimeout)
	}
	return token.Error()
}

func (b *MQTTMessageBus) dispatch(msg messagebus.EventMessage) {
	b.mu.RLock()
	handlers := make([]messagebus.Handler, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		for _, t := range sub.eventTypes {
			if t == msg.Type {
				handlers = append(handlers, sub.handler)
				break
			}
		}
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(msg)
	}
}

func (b *MQTTMessageBus) resubscribe() {
	b.mu.RLock()
	types := make(map[messagebus.EventType]struct{})
	for _, sub := range b.subscriptions {
		for _, t := range sub.eventTypes {
			types[t] = struct{}{}
		}
	}
	b.mu.RUnlock()

	for t := range types {
		if err := b.subscribeTopic(t); err != nil {
			log.Printf("⚠️  Re-subscribing %s failed: %v", b.topic(t), err)
		}
	}
}

// Unsubscribe releases the subscription with the given handle
func (b *MQTTMessageBus) Unsubscribe(id messagebus.SubscriptionID) error {
	b.mu.Lock()
	sub, ok := b.subscriptions[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("unsubscribe: unknown subscription %q", id)
	}
	delete(b.subscriptions, id)

	// drop broker subscriptions for topics no other subscriber needs
	var orphaned []string
	for _, t := range sub.eventTypes {
		needed := false
		for _, other := range b.subscriptions {
			for _, ot := range other.eventTypes {
				if ot == t {
					needed = true
					break
				}
			}
		}
		if !needed {
			orphaned = append(orphaned, b.topic(t))
		}
	}
	b.mu.Unlock()

	if len(orphaned) > 0 {
		token := b.client.Unsubscribe(orphaned...)
		if !token.WaitTimeout(connectTimeout) {
			return fmt.Errorf("mqtt unsubscribe: timeout after %v", connectTimeout)
		}
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker
func (b *MQTTMessageBus) Close() error {
	b.client.Disconnect(uint(connectTimeout.Milliseconds()))
	return nil
}
