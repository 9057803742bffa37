package dashboard

import (
	"github.com/quantumauth-io/crypto-tracker/internal/assets"
	"github.com/quantumauth-io/crypto-tracker/internal/market"
	"github.com/quantumauth-io/crypto-tracker/internal/portfolio"
	"github.com/quantumauth-io/crypto-tracker/internal/search"
)

// Reducer applies actions and re-derives whatever depends on the inputs
// that changed.
type Reducer struct {
	agg portfolio.Aggregator
}

func NewReducer(agg portfolio.Aggregator) Reducer {
	return Reducer{agg: agg}
}

func (r Reducer) Reduce(s State, a Action) State {
	listChanged, holdingsChanged := false, false

	switch act := a.(type) {
	case MarketLoadStarted:
		s.Loading = true

	case CoinsLoaded:
		s.Loading = false
		if act.Err == nil {
			s.Coins = act.Coins
			if s.Coins == nil {
				s.Coins = []market.CoinRecord{}
			}
			listChanged = true
			if s.Selected != nil {
				if c, ok := market.FindCoin(s.Coins, s.Selected.ID); ok {
					stats := c.Stats()
					s.Selected = &stats
				} else {
					s.Selected = nil
				}
			}
		}

	case QueryChanged:
		if act.Query != s.Query {
			s.Query = act.Query
			listChanged = true
		}

	case CoinSelected:
		if c, ok := market.FindCoin(s.Coins, act.ID); ok {
			stats := c.Stats()
			s.Selected = &stats
		}

	case ModalClosed:
		s.Selected = nil

	case WalletChanged:
		was := s.Wallet.Address
		s.Wallet = act.Wallet
		switch {
		case !s.Wallet.Connected():
			s.ShowPortfolio = false
			s.Balances = assets.Snapshot{}
			s.Prices = nil
			holdingsChanged = true
		case s.Wallet.Address != was:
			s.ShowPortfolio = true
			s.Balances = assets.Snapshot{}
			holdingsChanged = true
		}

	case ViewSelected:
		s.ShowPortfolio = act.View == ViewPortfolio && s.Wallet.Connected()

	case BalancesLoaded:
		if s.Wallet.Connected() && act.Snapshot.Owner.Hex() == s.Wallet.Address {
			s.Balances = act.Snapshot
			holdingsChanged = true
		}

	case PricesUpdated:
		if s.Wallet.Connected() {
			s.Prices = act.Prices
			holdingsChanged = true
		}
	}

	if listChanged {
		s.Filtered = search.Filter(s.Query, s.Coins)
	}
	if holdingsChanged {
		s.Portfolio = r.agg.Aggregate(s.Balances, s.Prices)
	}
	return s
}

// Apply reduces a sequence of actions in order.
func (r Reducer) Apply(s State, actions ...Action) State {
	for _, a := range actions {
		s = r.Reduce(s, a)
	}
	return s
}
