// Package events publishes trip and position events for downstream
// consumers. Publishing is best effort; a failed publish never fails the
// request that triggered it.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-track/internal/models"
)

// Publisher is the event sink the handlers and the ingestor write to.
type Publisher interface {
	TripStarted(trip *models.Trip)
	TripEnded(trip *models.Trip)
	PositionStored(position *models.Position)
	Close()
}

// PublishErrCounter is the metrics hook for failed publishes.
type PublishErrCounter interface {
	Inc()
}

// NATSPublisher publishes events as JSON messages on per-vehicle subjects.
type NATSPublisher struct {
	nc            *nats.Conn
	subjectPrefix string
	errCounter    PublishErrCounter
}

// NewNATSPublisher connects to NATS and returns a publisher using the given
// subject prefix, e.g. "fleet" yields fleet.trips.started.<vehicleID>.
func NewNATSPublisher(url, subjectPrefix string, errCounter PublishErrCounter) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("fleet-track"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{nc: nc, subjectPrefix: subjectPrefix, errCounter: errCounter}, nil
}

func (p *NATSPublisher) TripStarted(trip *models.Trip) {
	p.publish(fmt.Sprintf("%s.trips.started.%s", p.subjectPrefix, trip.VehicleID), trip)
}

func (p *NATSPublisher) TripEnded(trip *models.Trip) {
	p.publish(fmt.Sprintf("%s.trips.ended.%s", p.subjectPrefix, trip.VehicleID), trip)
}

func (p *NATSPublisher) PositionStored(position *models.Position) {
	p.publish(fmt.Sprintf("%s.positions.%s", p.subjectPrefix, position.VehicleID), position)
}

func (p *NATSPublisher) publish(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.countErr()
		log.WithError(err).WithField("subject", subject).Error("failed to marshal event")
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.countErr()
		log.WithError(err).WithField("subject", subject).Error("failed to publish event")
	}
}

func (p *NATSPublisher) countErr() {
	if p.errCounter != nil {
		p.errCounter.Inc()
	}
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		log.WithError(err).Warn("nats drain failed")
	}
}

// NoopPublisher discards all events. Used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) TripStarted(*models.Trip)        {}
func (NoopPublisher) TripEnded(*models.Trip)          {}
func (NoopPublisher) PositionStored(*models.Position) {}
func (NoopPublisher) Close()                          {}
