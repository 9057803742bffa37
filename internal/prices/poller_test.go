package prices

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/quantumauth-io/crypto-tracker/internal/market"
)

type scriptedFetcher struct {
	mu      sync.Mutex
	calls   int
	results []market.PriceMap // nil entry = error
	gotIDs  []string
}

func (f *scriptedFetcher) SimplePrice(ctx context.Context, ids []string, vs string) (market.PriceMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotIDs = ids
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	if f.results[i] == nil {
		return nil, errors.New("rate limited")
	}
	return f.results[i], nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestPoller_FetchesOnStartAndOnInterval(t *testing.T) {
	f := &scriptedFetcher{results: []market.PriceMap{
		{"ethereum": decimal.NewFromInt(3000)},
		{"ethereum": decimal.NewFromInt(3100)},
	}}

	var mu sync.Mutex
	var updates []market.PriceMap
	p := NewPoller(f, []string{"ethereum", "usd-coin"}, 20*time.Millisecond, func(m market.PriceMap) {
		mu.Lock()
		updates = append(updates, m)
		mu.Unlock()
	})

	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool {
		price, ok := p.Prices().Price("ethereum")
		return ok && price.Equal(decimal.NewFromInt(3100))
	})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(updates) >= 2
	})
	f.mu.Lock()
	if len(f.gotIDs) != 2 || f.gotIDs[0] != "ethereum" {
		t.Errorf("ids = %v", f.gotIDs)
	}
	f.mu.Unlock()

	mu.Lock()
	defer mu.Unlock()
	if len(updates) < 2 {
		t.Errorf("expected an update per refresh, got %d", len(updates))
	}
}

func TestPoller_FailureKeepsStalePrices(t *testing.T) {
	f := &scriptedFetcher{results: []market.PriceMap{
		{"ethereum": decimal.NewFromInt(3000)},
		nil,
	}}
	updates := 0
	var mu sync.Mutex
	p := NewPoller(f, []string{"ethereum"}, 10*time.Millisecond, func(market.PriceMap) {
		mu.Lock()
		updates++
		mu.Unlock()
	})

	p.Start(context.Background())
	waitFor(t, func() bool { return f.Calls() >= 3 })
	p.Stop()

	price, ok := p.Prices().Price("ethereum")
	if !ok || !price.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("stale price lost: %v (%v)", price, ok)
	}
	mu.Lock()
	if updates != 1 {
		t.Errorf("failed refreshes must not publish, got %d updates", updates)
	}
	mu.Unlock()
}

func TestPoller_StopCancelsInterval(t *testing.T) {
	f := &scriptedFetcher{results: []market.PriceMap{{"ethereum": decimal.NewFromInt(1)}}}
	p := NewPoller(f, []string{"ethereum"}, 10*time.Millisecond, nil)

	p.Start(context.Background())
	waitFor(t, func() bool { return f.Calls() >= 1 })
	p.Stop()

	if p.Running() {
		t.Fatalf("poller still running after Stop")
	}
	after := f.Calls()
	time.Sleep(50 * time.Millisecond)
	if f.Calls() != after {
		t.Errorf("poller kept fetching after Stop: %d -> %d", after, f.Calls())
	}

	// idempotent
	p.Stop()
}

func TestPoller_StartTwiceIsNoop(t *testing.T) {
	f := &scriptedFetcher{results: []market.PriceMap{{"ethereum": decimal.NewFromInt(1)}}}
	p := NewPoller(f, []string{"ethereum"}, time.Hour, nil)

	p.Start(context.Background())
	p.Start(context.Background())
	waitFor(t, func() bool { return f.Calls() >= 1 })
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	if got := f.Calls(); got != 1 {
		t.Errorf("expected a single initial fetch, got %d", got)
	}
}

func TestPoller_PricesIsACopy(t *testing.T) {
	f := &scriptedFetcher{results: []market.PriceMap{{"ethereum": decimal.NewFromInt(1)}}}
	p := NewPoller(f, []string{"ethereum"}, time.Hour, nil)
	p.Refresh(context.Background())

	got := p.Prices()
	got["ethereum"] = decimal.NewFromInt(999)
	if v, _ := p.Prices().Price("ethereum"); !v.Equal(decimal.NewFromInt(1)) {
		t.Errorf("internal map mutated through Prices()")
	}
	if p.UpdatedAt().IsZero() {
		t.Errorf("UpdatedAt not set")
	}
}
