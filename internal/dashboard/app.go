package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/crypto-tracker/internal/assets"
	"github.com/quantumauth-io/crypto-tracker/internal/market"
	"github.com/quantumauth-io/crypto-tracker/internal/portfolio"
	"github.com/quantumauth-io/crypto-tracker/internal/prices"
	"github.com/quantumauth-io/crypto-tracker/internal/wallet"
)

// MarketSource is satisfied by *market.Client.
type MarketSource interface {
	TopCoins(ctx context.Context) ([]market.CoinRecord, error)
}

// BalanceSource is satisfied by *assets.Reader.
type BalanceSource interface {
	Read(ctx context.Context, owner common.Address) (assets.Snapshot, error)
}

type Deps struct {
	Market        MarketSource
	Balances      BalanceSource
	Prices        prices.Fetcher
	Native        assets.NativeAsset
	Tokens        assets.TokenList
	Connectors    []wallet.Connector
	PriceInterval time.Duration

	// OnWalletConnected is called after every successful connect.
	OnWalletConnected func(common.Address)
}

// App owns one browser session: its view state, wallet session and the
// price poller of a mounted portfolio view. Every state change goes through
// the reducer.
type App struct {
	id      string
	deps    Deps
	reducer Reducer
	session *wallet.Session

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	lastSeen time.Time
	subs     map[int]chan State
	nextSub  int
	closed   bool

	pmu    sync.Mutex
	poller *prices.Poller
	owner  common.Address // whose holdings the poller serves
}

func NewApp(id string, deps Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		id:       id,
		deps:     deps,
		reducer:  NewReducer(portfolio.NewAggregator(deps.Native, deps.Tokens)),
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: time.Now(),
		subs:     make(map[int]chan State),
	}
	a.session = wallet.NewSession(deps.Connectors, func(s wallet.Snapshot) {
		a.dispatch(WalletChanged{Wallet: s})
	})
	a.state = Initial(a.session.Snapshot())
	return a
}

func (a *App) ID() string { return a.id }

// Mount starts the one-off coin list fetch of a freshly opened page.
func (a *App) Mount() {
	a.dispatch(MarketLoadStarted{})
	go a.LoadMarket(a.ctx)
}

// LoadMarket fetches the coin list once. Failures are logged and leave the
// previous list in place.
func (a *App) LoadMarket(ctx context.Context) State {
	coins, err := a.deps.Market.TopCoins(ctx)
	if err != nil {
		log.Error("fetching crypto data failed", "session", a.id, "error", err)
	}
	return a.dispatch(CoinsLoaded{Coins: coins, Err: err})
}

// Refresh re-runs the coin fetch in the background.
func (a *App) Refresh() State {
	st := a.dispatch(MarketLoadStarted{})
	go a.LoadMarket(a.ctx)
	return st
}

func (a *App) Search(query string) State {
	return a.dispatch(QueryChanged{Query: query})
}

func (a *App) SelectCoin(id string) State {
	return a.dispatch(CoinSelected{ID: id})
}

func (a *App) CloseModal() State {
	return a.dispatch(ModalClosed{})
}

// Connect runs the wallet session's connect flow. On success the portfolio
// view opens and its balance read and price poller start. The connecting
// transition clears any loaded holdings, so a mounted view is reloaded and a
// failed attempt unmounts it.
func (a *App) Connect(ctx context.Context, req wallet.ConnectRequest) (State, error) {
	snap, err := a.session.Connect(ctx, req)
	if err != nil {
		log.Warn("wallet connect failed", "session", a.id, "error", err)
		a.syncPortfolio(false)
		return a.State(), err
	}

	if a.deps.OnWalletConnected != nil {
		if addr, ok := a.session.Address(); ok {
			a.deps.OnWalletConnected(addr)
		}
	}
	log.Info("wallet connected", "session", a.id, "address", snap.Address, "connector", snap.Connector)

	a.syncPortfolio(true)
	return a.State(), nil
}

func (a *App) Disconnect() State {
	a.session.Disconnect()
	a.syncPortfolio(false)
	return a.State()
}

// SelectView switches between market and portfolio; the portfolio is only
// reachable with a connected wallet.
func (a *App) SelectView(v View) State {
	a.dispatch(ViewSelected{View: v})
	a.syncPortfolio(false)
	return a.State()
}

func (a *App) Wallet() wallet.Snapshot { return a.session.Snapshot() }

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *App) Touch() {
	a.mu.Lock()
	a.lastSeen = time.Now()
	a.mu.Unlock()
}

func (a *App) LastSeen() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSeen
}

// Subscribe delivers the latest state after every change. Slow readers only
// ever see the most recent state.
func (a *App) Subscribe() (<-chan State, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ch := make(chan State, 1)
	if a.closed {
		close(ch)
		return ch, func() {}
	}
	id := a.nextSub
	a.nextSub++
	a.subs[id] = ch
	ch <- a.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if _, ok := a.subs[id]; ok {
				delete(a.subs, id)
				close(ch)
			}
		})
	}
}

// Close releases the poller and ends every subscription.
func (a *App) Close() {
	a.stopPoller()
	a.cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	for id, ch := range a.subs {
		close(ch)
		delete(a.subs, id)
	}
}

func (a *App) dispatch(act Action) State {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = a.reducer.Reduce(a.state, act)
	for _, ch := range a.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- a.state:
		default:
		}
	}
	return a.state
}

// syncPortfolio mounts or unmounts the portfolio view's resources to match
// the current state. reload re-reads the holdings of an already mounted view.
func (a *App) syncPortfolio(reload bool) {
	st := a.State()
	addr, connected := a.session.Address()
	if st.ShowPortfolio && connected {
		a.mountPortfolio(addr, reload)
		return
	}
	a.stopPoller()
}

func (a *App) mountPortfolio(owner common.Address, reload bool) {
	a.pmu.Lock()
	defer a.pmu.Unlock()

	if a.poller != nil && a.poller.Running() {
		if a.owner == owner {
			if reload {
				go a.poller.Refresh(a.ctx)
				go a.readBalances(owner)
			}
			return
		}
		a.poller.Stop()
	}

	a.owner = owner
	a.poller = prices.NewPoller(a.deps.Prices, a.deps.Tokens.PriceIDs(a.deps.Native), a.deps.PriceInterval,
		func(m market.PriceMap) {
			a.dispatch(PricesUpdated{Prices: m})
		})
	a.poller.Start(a.ctx)

	go a.readBalances(owner)
}

func (a *App) readBalances(owner common.Address) {
	snap, err := a.deps.Balances.Read(a.ctx, owner)
	if err != nil {
		log.Error("reading balances failed", "session", a.id, "owner", owner.Hex(), "error", err)
		return
	}
	a.dispatch(BalancesLoaded{Snapshot: snap})
}

func (a *App) stopPoller() {
	a.pmu.Lock()
	p := a.poller
	a.poller = nil
	a.pmu.Unlock()

	if p != nil {
		p.Stop()
	}
}

// PollerRunning reports whether a portfolio view is currently mounted.
func (a *App) PollerRunning() bool {
	a.pmu.Lock()
	defer a.pmu.Unlock()
	return a.poller != nil && a.poller.Running()
}
