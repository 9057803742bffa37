package portfolio

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/quantumauth-io/crypto-tracker/internal/assets"
	"github.com/quantumauth-io/crypto-tracker/internal/market"
)

// Asset is one held position valued at its spot price.
type Asset struct {
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Price   decimal.Decimal `json:"price"`
	Value   decimal.Decimal `json:"value"`
	Icon    string          `json:"icon"`
}

type Summary struct {
	Loading bool            `json:"loading"`
	Assets  []Asset         `json:"assets"`
	Total   decimal.Decimal `json:"total"`
}

// Aggregator values a balance snapshot with a price map for a fixed native
// asset and token list.
type Aggregator struct {
	native assets.NativeAsset
	tokens assets.TokenList
}

func NewAggregator(native assets.NativeAsset, tokens assets.TokenList) Aggregator {
	return Aggregator{native: native, tokens: tokens}
}

// Loading reports whether the inputs are incomplete: native balance, token
// batch or native price missing.
func (a Aggregator) Loading(snap assets.Snapshot, prices market.PriceMap) bool {
	if snap.Native == nil || snap.Tokens == nil {
		return true
	}
	_, ok := prices.Price(a.native.PriceID)
	return !ok
}

// Aggregate builds the summary. Assets with a non-positive balance and tokens
// whose read failed are left out of both the list and the total. A missing
// price values the asset at zero.
func (a Aggregator) Aggregate(snap assets.Snapshot, prices market.PriceMap) Summary {
	if a.Loading(snap, prices) {
		return Summary{Loading: true, Assets: []Asset{}, Total: decimal.Zero}
	}

	out := Summary{Assets: make([]Asset, 0, a.tokens.Len()+1), Total: decimal.Zero}
	add := func(raw *big.Int, decimals uint8, symbol, name, priceID, icon string) {
		bal := ToDecimal(raw, decimals)
		if !bal.IsPositive() {
			return
		}
		price, _ := prices.Price(priceID)
		value := bal.Mul(price)
		out.Assets = append(out.Assets, Asset{
			Symbol:  symbol,
			Name:    name,
			Balance: bal,
			Price:   price,
			Value:   value,
			Icon:    icon,
		})
		out.Total = out.Total.Add(value)
	}

	add(snap.Native, a.native.Decimals, a.native.Symbol, a.native.Name, a.native.PriceID, a.native.Icon)

	for i := 0; i < a.tokens.Len() && i < len(snap.Tokens); i++ {
		tb := snap.Tokens[i]
		if !tb.OK || tb.Raw == nil {
			continue
		}
		tok := a.tokens.At(i)
		add(tb.Raw, tok.Decimals, tok.Symbol, tok.Name, tok.PriceID, tok.Icon)
	}

	return out
}

// ToDecimal converts a raw integer amount with the given precision.
func ToDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
