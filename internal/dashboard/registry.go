package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/axiomhq/hyperloglog"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

const defaultIdleTTL = 30 * time.Minute

type Stats struct {
	Sessions      int    `json:"sessions"`
	UniqueWallets uint64 `json:"uniqueWallets"`
}

// Registry holds the live App of every browser session and evicts the idle
// ones.
type Registry struct {
	deps    Deps
	idleTTL time.Duration

	mu   sync.Mutex
	apps map[string]*App

	hmu     sync.Mutex
	wallets *hyperloglog.Sketch
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	r := &Registry{
		idleTTL: idleTTL,
		apps:    make(map[string]*App),
		wallets: hyperloglog.New14(),
	}

	next := deps.OnWalletConnected
	deps.OnWalletConnected = func(addr common.Address) {
		r.hmu.Lock()
		r.wallets.Insert(addr.Bytes())
		r.hmu.Unlock()
		if next != nil {
			next(addr)
		}
	}
	r.deps = deps
	return r
}

// Create registers and mounts a new session.
func (r *Registry) Create() *App {
	app := NewApp(uuid.NewString(), r.deps)

	r.mu.Lock()
	r.apps[app.ID()] = app
	r.mu.Unlock()

	app.Mount()
	log.Info("session created", "session", app.ID())
	return app
}

func (r *Registry) Get(id string) (*App, bool) {
	r.mu.Lock()
	app, ok := r.apps[id]
	r.mu.Unlock()
	if ok {
		app.Touch()
	}
	return app, ok
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
func (r *Registry) GetOrCreate(id string) (*App, bool) {
	if id != "" {
		if app, ok := r.Get(id); ok {
			return app, false
		}
	}
	return r.Create(), true
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	app, ok := r.apps[id]
	delete(r.apps, id)
	r.mu.Unlock()

	if ok {
		app.Close()
	}
}

// Sweep closes sessions idle for longer than the TTL and returns how many.
func (r *Registry) Sweep(now time.Time) int {
	var stale []*App

	r.mu.Lock()
	for id, app := range r.apps {
		if now.Sub(app.LastSeen()) > r.idleTTL {
			stale = append(stale, app)
			delete(r.apps, id)
		}
	}
	r.mu.Unlock()

	for _, app := range stale {
		app.Close()
	}
	if len(stale) > 0 {
		log.Info("idle sessions evicted", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	n := len(r.apps)
	r.mu.Unlock()

	r.hmu.Lock()
	est := r.wallets.Estimate()
	r.hmu.Unlock()

	return Stats{Sessions: n, UniqueWallets: est}
}

// Close shuts every session down.
func (r *Registry) Close() {
	r.mu.Lock()
	apps := r.apps
	r.apps = make(map[string]*App)
	r.mu.Unlock()

	for _, app := range apps {
		app.Close()
	}
}
