// Package natsx serves the identity operations as NATS request/reply
// subjects, backed by a pool of queue subscriptions per operation.
package natsx

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const drainTimeout = 10 * time.Second

type Server struct {
	url     string
	prefix  string
	queue   string
	timeout time.Duration
	workers int
	service Service
	logger  logging.Logger
	metrics *metrics.Recorder
}

func NewServer(cfg *config.Config, svc Service, l logging.Logger, m *metrics.Recorder) *Server {
	return &Server{
		url:     cfg.NatsURL,
		prefix:  cfg.SubjectPrefix,
		queue:   cfg.QueueGroup,
		timeout: cfg.RequestTimeout,
		workers: runtime.GOMAXPROCS(0),
		service: svc,
		logger:  l.With("module", "nats_server"),
		metrics: m,
	}
}

// Run subscribes and serves until ctx is cancelled. Each subject gets one
// queue subscription per worker, so requests on a subject are handled
// concurrently. On shutdown the connection is drained: no new requests are
// taken and the ones already received are answered before it closes.
func (s *Server) Run(ctx context.Context) error {
	closed := make(chan struct{})

	nc, err := nats.Connect(s.url,
		nats.Name("gophauth"),
		nats.MaxReconnects(-1),
		nats.DrainTimeout(drainTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				s.logger.Warn(ctx, "NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			s.logger.Info(ctx, "NATS reconnected", "url", c.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			s.logger.Error(ctx, "NATS async error", "error", err)
		}),
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }),
	)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	for _, op := range common.Operations {
		subject := common.Subject(s.prefix, op)
		for i := 0; i < s.workers; i++ {
			if _, err := nc.QueueSubscribe(subject, s.queue, func(m *nats.Msg) {
				s.serve(ctx, op, m)
			}); err != nil {
				return fmt.Errorf("subscribe %s: %w", subject, err)
			}
		}
	}
	if err := nc.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	s.logger.Info(ctx, "Starting NATS server", "url", nc.ConnectedUrl(), "prefix", s.prefix, "queue", s.queue, "workers", s.workers)

	<-ctx.Done()
	s.logger.Info(ctx, "Stopping NATS server...")

	if err := nc.Drain(); err != nil {
		return fmt.Errorf("nats drain: %w", err)
	}
	<-closed

	return nil
}

func (s *Server) serve(parent context.Context, op string, m *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
	defer cancel()

	start := time.Now()
	reply, status := Handle(ctx, s.service, op, m.Data)
	elapsed := time.Since(start)

	s.metrics.Observe(metrics.TransportNATS, op, status, elapsed)

	log := s.logger.With("subject", m.Subject, "request_id", uuid.NewString(), "status", status, "duration", elapsed)
	if status >= 400 {
		log.Warn(ctx, "request failed")
	} else {
		log.Info(ctx, "request served")
	}

	if m.Reply == "" {
		return
	}
	if err := m.Respond(reply); err != nil {
		log.Error(ctx, "reply failed", "error", err)
	}
}
