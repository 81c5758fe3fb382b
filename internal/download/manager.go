package download

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

// maxListRetries bounds how often a failing client is asked again within one poll.
const maxListRetries = 3

// Listing is the result of listing one client.
type Listing struct {
	Client ClientInfo
	Items  []*ClientItem
	Err    error
}

// Manager polls every configured download client.
type Manager struct {
	clients    []Client
	log        *slog.Logger
	newBackOff func() backoff.BackOff
}

// NewManager creates a new download manager over the given clients.
func NewManager(log *slog.Logger, clients ...Client) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		clients: clients,
		log:     log.With("component", "download-manager"),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 15 * time.Second
			return backoff.WithMaxRetries(b, maxListRetries)
		},
	}
}

// Clients returns the configured clients.
func (m *Manager) Clients() []ClientInfo {
	infos := make([]ClientInfo, len(m.clients))
	for i, c := range m.clients {
		infos[i] = c.Info()
	}
	return infos
}

// Poll lists all clients concurrently. Transient failures are retried
// with backoff; rejected credentials are not. Listings keep client order
// and a failed client reports its error instead of items.
func (m *Manager) Poll(ctx context.Context) []Listing {
	listings := make([]Listing, len(m.clients))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range m.clients {
		g.Go(func() error {
			listings[i] = m.list(ctx, c)
			return nil
		})
	}
	_ = g.Wait()
	return listings
}

func (m *Manager) list(ctx context.Context, c Client) Listing {
	info := c.Info()
	var items []*ClientItem
	op := func() error {
		var err error
		items, err = c.List(ctx)
		if errors.Is(err, ErrInvalidAPIKey) || errors.Is(err, ErrAuthFailed) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		m.log.Debug("list failed, retrying", "client", info.Name, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(m.newBackOff(), ctx), notify); err != nil {
		m.log.Warn("list failed", "client", info.Name, "error", err)
		return Listing{Client: info, Err: err}
	}
	m.log.Debug("listed client", "client", info.Name, "items", len(items))
	return Listing{Client: info, Items: items}
}
