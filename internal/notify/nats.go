package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/roach88/quadstore/internal/docstore"
	"github.com/roach88/quadstore/internal/rdf"
)

const (
	kindAdded   = "added"
	kindDeleted = "deleted"
	kindError   = "error"
)

// Publisher is the subset of *nats.Conn the publisher needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON payload published for each notification.
type Message struct {
	ID    string            `json:"id"`
	Kind  string            `json:"kind"`
	Quad  *docstore.QuadDoc `json:"quad,omitempty"`
	NQuad string            `json:"nquad,omitempty"`
	Error string            `json:"error,omitempty"`
}

// NATSPublisher publishes notifications to <prefix>.added, <prefix>.deleted
// and <prefix>.error. Publish failures are logged, never returned to the store.
type NATSPublisher struct {
	pub    Publisher
	prefix string
	logger *slog.Logger
}

// NewNATSPublisher creates a publisher. A nil logger means slog.Default().
func NewNATSPublisher(pub Publisher, prefix string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{pub: pub, prefix: prefix, logger: logger}
}

// ConnectNATS dials url with reconnect settings suited to a long-lived publisher.
func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("quadstore"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return conn, nil
}

// Subject returns the subject for an event kind.
func (p *NATSPublisher) Subject(kind string) string {
	return p.prefix + "." + kind
}

func (p *NATSPublisher) QuadAdded(q rdf.Quad)   { p.publishQuad(kindAdded, q) }
func (p *NATSPublisher) QuadDeleted(q rdf.Quad) { p.publishQuad(kindDeleted, q) }

func (p *NATSPublisher) StoreError(err error) {
	p.publish(Message{Kind: kindError, Error: err.Error()})
}

func (p *NATSPublisher) publishQuad(kind string, q rdf.Quad) {
	doc := docstore.EncodeQuad(q)
	p.publish(Message{Kind: kind, Quad: &doc, NQuad: q.String()})
}

func (p *NATSPublisher) publish(m Message) {
	id, err := uuid.NewV7()
	if err != nil {
		p.logger.Warn("nats: generate message id", "error", err)
		return
	}
	m.ID = id.String()

	data, err := json.Marshal(m)
	if err != nil {
		p.logger.Warn("nats: encode message", "kind", m.Kind, "error", err)
		return
	}
	subject := p.Subject(m.Kind)
	if err := p.pub.Publish(subject, data); err != nil {
		p.logger.Warn("nats: publish failed", "subject", subject, "error", err)
	}
}
