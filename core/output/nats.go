package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// publisher is the subset of *nats.Conn used by NATSSink.
type publisher interface {
	Publish(subject string, data []byte) error
	Flush() error
	Close()
}

// NATSSink publishes each record as JSON on a subject.
type NATSSink struct {
	conn    publisher
	subject string
}

// DialNATS connects to url and returns a sink publishing on subject.
func DialNATS(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(url, nats.Name("pagechunk"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSink{conn: nc, subject: subject}, nil
}

// Push publishes rec. Delivery is fire-and-forget; Close flushes.
func (s *NATSSink) Push(ctx context.Context, rec *core.PageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", rec.URL, err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publishing %s to %s: %w", rec.URL, s.subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (s *NATSSink) Close() error {
	err := s.conn.Flush()
	s.conn.Close()
	if err != nil {
		return fmt.Errorf("flushing NATS: %w", err)
	}
	return nil
}
