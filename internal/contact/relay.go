package contact

import (
	"context"
	"errors"
	"time"

	"github.com/itakarlapalli/subcentre/pkg/logger"
	"github.com/itakarlapalli/subcentre/pkg/metrics"
)

var ErrRelayNotConfigured = errors.New("message relay not configured")

// Relay delivers a contact message to the centre operator. Implementations are
// best-effort; a failure is reported to the sender and nothing else.
type Relay interface {
	Name() string
	Send(ctx context.Context, m Message) error
}

// Notifier validates messages and hands them to a Relay. It is independent of
// patient records: no CRUD path calls it.
type Notifier struct {
	relay Relay
	now   func() time.Time
}

// NewNotifier accepts a nil relay; every send then fails with
// ErrRelayNotConfigured.
func NewNotifier(r Relay) *Notifier {
	return &Notifier{relay: r, now: time.Now}
}

// Ready reports whether a relay is wired.
func (n *Notifier) Ready() bool { return n.relay != nil }

func (n *Notifier) relayName() string {
	if n.relay == nil {
		return "none"
	}
	return n.relay.Name()
}

// Send returns *MissingFieldError for bad input and the relay error otherwise.
func (n *Notifier) Send(ctx context.Context, m Message) error {
	m, err := m.Normalize()
	if err != nil {
		metrics.ContactMessages.WithLabelValues(n.relayName(), "invalid").Inc()
		return err
	}
	if n.relay == nil {
		metrics.ContactMessages.WithLabelValues("none", "error").Inc()
		logger.Errorf("contact message from %s dropped: %v", m.Name, ErrRelayNotConfigured)
		return ErrRelayNotConfigured
	}
	m.Received = n.now().UTC()
	if err := n.relay.Send(ctx, m); err != nil {
		metrics.ContactMessages.WithLabelValues(n.relay.Name(), "error").Inc()
		logger.Errorf("contact relay %s failed: %v", n.relay.Name(), err)
		return err
	}
	metrics.ContactMessages.WithLabelValues(n.relay.Name(), "sent").Inc()
	logger.Infof("contact message from %s relayed via %s", m.Name, n.relay.Name())
	return nil
}
