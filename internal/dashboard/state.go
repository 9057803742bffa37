package dashboard

import (
	"github.com/quantumauth-io/crypto-tracker/internal/assets"
	"github.com/quantumauth-io/crypto-tracker/internal/market"
	"github.com/quantumauth-io/crypto-tracker/internal/portfolio"
	"github.com/quantumauth-io/crypto-tracker/internal/wallet"
)

type View string

const (
	ViewMarket    View = "market"
	ViewPortfolio View = "portfolio"
)

// State is everything one browser session renders from. Filtered and
// Portfolio are derived; Reduce keeps them in step with their inputs.
type State struct {
	Coins    []market.CoinRecord `json:"-"`
	Filtered []market.CoinRecord `json:"coins"`
	Loading  bool                `json:"loading"`
	Query    string              `json:"query"`

	Wallet        wallet.Snapshot `json:"wallet"`
	ShowPortfolio bool            `json:"showPortfolio"`

	Selected *market.CoinStats `json:"selected,omitempty"`

	Balances  assets.Snapshot   `json:"-"`
	Prices    market.PriceMap   `json:"-"`
	Portfolio portfolio.Summary `json:"portfolio"`
}

func (s State) View() View {
	if s.ShowPortfolio {
		return ViewPortfolio
	}
	return ViewMarket
}

// PortfolioAvailable reports whether the Market/Portfolio toggle is shown.
func (s State) PortfolioAvailable() bool {
	return s.Wallet.Connected()
}

// Initial is the state of a freshly mounted page: coin list loading.
func Initial(w wallet.Snapshot) State {
	return State{
		Coins:     []market.CoinRecord{},
		Filtered:  []market.CoinRecord{},
		Loading:   true,
		Wallet:    w,
		Portfolio: portfolio.Summary{Loading: true, Assets: []portfolio.Asset{}},
	}
}

// Action is a named input change.
type Action interface{ isAction() }

type (
	MarketLoadStarted struct{}

	// CoinsLoaded ends a coin fetch. Err set means the fetch failed and the
	// previous list stays.
	CoinsLoaded struct {
		Coins []market.CoinRecord
		Err   error
	}

	QueryChanged struct{ Query string }

	CoinSelected struct{ ID string }

	ModalClosed struct{}

	WalletChanged struct{ Wallet wallet.Snapshot }

	ViewSelected struct{ View View }

	BalancesLoaded struct{ Snapshot assets.Snapshot }

	PricesUpdated struct{ Prices market.PriceMap }
)

func (MarketLoadStarted) isAction() {}
func (CoinsLoaded) isAction()       {}
func (QueryChanged) isAction()      {}
func (CoinSelected) isAction()      {}
func (ModalClosed) isAction()       {}
func (WalletChanged) isAction()     {}
func (ViewSelected) isAction()      {}
func (BalancesLoaded) isAction()    {}
func (PricesUpdated) isAction()     {}
