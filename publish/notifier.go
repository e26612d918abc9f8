package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/perseus-aa/manifest-compiler/compiler"
)

// DefaultSubject is the subject prefix artifact notifications go to. The
// artifact kind is appended: aacompile.artifact.manifest, ...
const DefaultSubject = "aacompile.artifact"

// NATSConfig holds notification settings.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Enabled reports whether notifications are configured.
func (c NATSConfig) Enabled() bool { return c.URL != "" }

// ArtifactMessage is the notification payload.
type ArtifactMessage struct {
	compiler.Artifact
	PublishedAt time.Time `json:"published_at"`
}

// Publisher is the part of *nats.Conn the notifier uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Notifier announces written artifacts on NATS. It implements
// compiler.Sink.
type Notifier struct {
	pub     Publisher
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	now     func() time.Time
}

// Connect dials the configured server.
func Connect(cfg NATSConfig, logger *slog.Logger) (*Notifier, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("aacompile"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	n := NewNotifier(conn, cfg.Subject, logger)
	n.conn = conn
	return n, nil
}

// NewNotifier creates a notifier over an existing publisher. An empty
// subject selects DefaultSubject.
func NewNotifier(pub Publisher, subject string, logger *slog.Logger) *Notifier {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{pub: pub, subject: subject, logger: logger, now: time.Now}
}

// Subject returns the subject an artifact of kind is announced on.
func (n *Notifier) Subject(kind compiler.Kind) string {
	return n.subject + "." + string(kind)
}

// Publish implements compiler.Sink.
func (n *Notifier) Publish(_ context.Context, a compiler.Artifact) error {
	if n == nil || n.pub == nil {
		return nil
	}

	data, err := json.Marshal(ArtifactMessage{Artifact: a, PublishedAt: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal artifact message: %w", err)
	}
	subject := n.Subject(a.Kind)
	if err := n.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	n.logger.Debug("Artifact announced", "subject", subject, "key", a.Key)
	return nil
}

// Close drains the connection opened by Connect.
func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
