// Package notify implements the NotificationPublisher port over MQTT.
// The agent and seller apps keep a subscription open on their own topic
// and render order changes as they arrive. Publishing is fire and forget
// at QoS 1; dispatch state never depends on delivery.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	agentTopicPrefix  = "dispatch/agents/"
	sellerTopicPrefix = "dispatch/sellers/"
	adminTopic        = "dispatch/admin/escalations"

	publishQoS     byte = 1
	connectTimeout      = 5 * time.Second
	publishTimeout      = 3 * time.Second
)

// mqttClient is the subset of the paho client the publisher uses.
type mqttClient interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MqttPublisher pushes order lifecycle events onto per-party MQTT topics.
type MqttPublisher struct {
	client mqttClient
}

// NewMqttPublisher connects to the broker and returns a ready publisher.
func NewMqttPublisher(brokerURL, clientID string) (*MqttPublisher, error) {
	if brokerURL == "" {
		return nil, errs.NewValueIsRequiredError("brokerURL")
	}
	if clientID == "" {
		return nil, errs.NewValueIsRequiredError("clientID")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	return &MqttPublisher{client: client}, nil
}

// newWithClient wires an already-connected client. Used by tests.
func newWithClient(client mqttClient) *MqttPublisher {
	return &MqttPublisher{client: client}
}

// PublishOrderEvent notifies the agent-facing channel about an order change.
func (p *MqttPublisher) PublishOrderEvent(ctx context.Context, agentID kernel.UUID, event ports.OrderEvent) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	return p.publish(ctx, agentTopicPrefix+agentID.String(), event)
}

// PublishSellerEvent notifies the seller whose store fulfils the order.
func (p *MqttPublisher) PublishSellerEvent(ctx context.Context, sellerID kernel.UUID, event ports.OrderEvent) error {
	if err := sellerID.Validate(); err != nil {
		return err
	}
	return p.publish(ctx, sellerTopicPrefix+sellerID.String(), event)
}

// PublishAdminEvent notifies the operations channel, used for escalations.
func (p *MqttPublisher) PublishAdminEvent(ctx context.Context, event ports.OrderEvent) error {
	return p.publish(ctx, adminTopic, event)
}

// Close disconnects from the broker, letting in-flight messages drain.
func (p *MqttPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

func (p *MqttPublisher) publish(ctx context.Context, topic string, event ports.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	token := p.client.Publish(topic, publishQoS, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-time.After(publishTimeout):
		return context.DeadlineExceeded
	case <-ctx.Done():
		return ctx.Err()
	}
}
