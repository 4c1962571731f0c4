package natsgath

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of *nats.Conn used by the gatherer.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("sampler"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
}

// New creates a gatherer that streams events of job jobUuid to subject.
func New(nc Publisher, subject string, jobUuid string) *natsGatherer {
	return &natsGatherer{
		nc:      nc,
		subject: subject,
		jobUuid: jobUuid,
		log:     slog.With("subject", subject, "job", jobUuid),
	}
}
