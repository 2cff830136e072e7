package mqtt

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealRemote subscribes to the command topic on an actual MQTT broker.
type RealRemote struct {
	client paho.Client
	topic  string
}

// NewRealRemote connects to broker and queues every command received on
// topic into presses. The subscription is renewed after each reconnect.
func NewRealRemote(broker, topic string, presses *Presses) (*RealRemote, error) {
	onMessage := func(_ paho.Client, msg paho.Message) {
		if err := presses.HandlePayload(msg.Payload()); err != nil {
			log.Printf("mqtt: ignoring message on %s: %v", msg.Topic(), err)
			return
		}
		log.Printf("mqtt: remote %s press", string(msg.Payload()))
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("tea-dunker").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			// QoS 1: a lost start press would leave the operator waiting
			token := c.Subscribe(topic, 1, onMessage)
			if !token.WaitTimeout(5 * time.Second) {
				log.Printf("mqtt: subscribe %s timeout", topic)
				return
			}
			if err := token.Error(); err != nil {
				log.Printf("mqtt: subscribe %s: %v", topic, err)
				return
			}
			log.Printf("mqtt: subscribed to %s", topic)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealRemote{
		client: client,
		topic:  topic,
	}, nil
}

// Close unsubscribes and disconnects from the broker.
func (r *RealRemote) Close() error {
	r.client.Unsubscribe(r.topic).WaitTimeout(time.Second)
	r.client.Disconnect(1000) // 1 second timeout
	return nil
}
