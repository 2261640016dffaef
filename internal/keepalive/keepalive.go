// Package keepalive runs a periodic no-op probe against the application
// database. Hosted free-tier instances pause after a stretch of inactivity;
// a ping per interval keeps them warm. A failed probe is logged and retried
// on the next tick, never escalated.
package keepalive

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pairpad/coordinator/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

type Pinger struct {
	client   *mongo.Client
	interval time.Duration
}

// New connects to the database and verifies it once. Returns an error only
// on startup; runtime probe failures are absorbed by Run.
func New(ctx context.Context, cfg config.MongoConfig) (*Pinger, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, pingTimeout)
	defer cancelPing()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Pinger{client: client, interval: cfg.PingInterval}, nil
}

// Run probes the database every interval until ctx is cancelled.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := p.client.Ping(pingCtx, nil)
			cancel()
			if err != nil {
				logrus.WithError(err).Warn("Database keep-alive failed")
				continue
			}
			logrus.Debug("Database keep-alive ok")
		}
	}
}

func (p *Pinger) Close(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}
