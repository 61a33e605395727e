// Package ingest receives device position reports over MQTT and appends them
// to the position store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-track/internal/db"
	"github.com/ukydev/fleet-track/internal/events"
	"github.com/ukydev/fleet-track/internal/models"
)

// Metrics is the subset of the collector the subscriber reports to.
type Metrics interface {
	PositionIngested(source string)
	IngestError()
}

// Subscriber consumes position messages from an MQTT broker. Devices publish
// JSON payloads on fleet/<vehicleID>/positions.
type Subscriber struct {
	client    mqtt.Client
	topic     string
	positions db.PositionCollection
	events    events.Publisher
	metrics   Metrics
}

// New creates a subscriber connected to the given broker.
func New(brokerURL, clientID, topic string, positions db.PositionCollection, publisher events.Publisher, metrics Metrics) (*Subscriber, error) {
	s := &Subscriber{
		topic:     topic,
		positions: positions,
		events:    publisher,
		metrics:   metrics,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			if token := c.Subscribe(s.topic, 1, s.handleMessage); token.Wait() && token.Error() != nil {
				log.WithError(token.Error()).WithField("topic", s.topic).Error("mqtt subscribe failed")
				return
			}
			log.WithField("topic", s.topic).Info("mqtt subscribed")
		})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return s, nil
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var input models.PositionInput
	if err := json.Unmarshal(msg.Payload(), &input); err != nil {
		s.countErr()
		log.WithError(err).WithField("topic", msg.Topic()).Warn("dropping malformed position message")
		return
	}

	// The topic segment identifies the vehicle when the payload does not.
	if input.VehicleID == "" {
		input.VehicleID = vehicleIDFromTopic(msg.Topic())
	}

	if err := input.Validate(); err != nil {
		s.countErr()
		log.WithError(err).WithFields(log.Fields{
			"topic":      msg.Topic(),
			"vehicle_id": input.VehicleID,
		}).Warn("dropping invalid position message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	position, err := s.positions.InsertPosition(ctx, input)
	if err != nil {
		s.countErr()
		log.WithError(err).WithField("vehicle_id", input.VehicleID).Error("failed to store position")
		return
	}

	if s.metrics != nil {
		s.metrics.PositionIngested("mqtt")
	}
	s.events.PositionStored(position)
}

func (s *Subscriber) countErr() {
	if s.metrics != nil {
		s.metrics.IngestError()
	}
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (s *Subscriber) Close() {
	s.client.Disconnect(250)
}

// vehicleIDFromTopic extracts the vehicle segment of fleet/<vehicleID>/positions.
func vehicleIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
