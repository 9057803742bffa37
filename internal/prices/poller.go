package prices

import (
	"context"
	"sync"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/crypto-tracker/internal/constants"
	"github.com/quantumauth-io/crypto-tracker/internal/market"
)

// Fetcher is satisfied by *market.Client.
type Fetcher interface {
	SimplePrice(ctx context.Context, ids []string, vsCurrency string) (market.PriceMap, error)
}

// Poller refreshes spot prices for a fixed id set: once on Start, then on
// every interval tick until Stop. A failed refresh keeps the last prices.
type Poller struct {
	fetcher  Fetcher
	ids      []string
	interval time.Duration
	onUpdate func(market.PriceMap)

	mu      sync.Mutex
	prices  market.PriceMap
	updated time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPoller(fetcher Fetcher, ids []string, interval time.Duration, onUpdate func(market.PriceMap)) *Poller {
	if interval <= 0 {
		interval = constants.DefaultPriceRefreshSeconds * time.Second
	}
	return &Poller{
		fetcher:  fetcher,
		ids:      append([]string(nil), ids...),
		interval: interval,
		onUpdate: onUpdate,
	}
}

// Start launches the refresh loop. Calling Start on a running poller is a no-op.
func (p *Poller) Start(parent context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)
}

// Stop cancels the loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Prices returns a copy of the last successful lookup.
func (p *Poller) Prices() market.PriceMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prices.Clone()
}

func (p *Poller) UpdatedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updated
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// Refresh performs one lookup outside the loop.
func (p *Poller) Refresh(ctx context.Context) {
	p.refresh(ctx)
}

func (p *Poller) refresh(ctx context.Context) {
	got, err := p.fetcher.SimplePrice(ctx, p.ids, constants.VsCurrency)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("price refresh failed", "ids", p.ids, "error", err)
		}
		return
	}

	p.mu.Lock()
	p.prices = got.Clone()
	p.updated = time.Now().UTC()
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(got.Clone())
	}
}
