package portfolio

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quantumauth-io/crypto-tracker/internal/assets"
	"github.com/quantumauth-io/crypto-tracker/internal/market"
)

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newAggregator() Aggregator {
	return NewAggregator(assets.BaseNative(), assets.BaseTokens())
}

func okBalances(vals ...*big.Int) []assets.TokenBalance {
	out := make([]assets.TokenBalance, len(vals))
	for i, v := range vals {
		out[i] = assets.TokenBalance{Raw: v, OK: true}
	}
	return out
}

func allPrices() market.PriceMap {
	return market.PriceMap{
		"ethereum": dec("3000"),
		"usd-coin": dec("1"),
		"weth":     dec("3000"),
		"dai":      dec("0.999"),
	}
}

func TestAggregate_NativeOnly(t *testing.T) {
	snap := assets.Snapshot{
		Native: wei("1500000000000000000"),
		Tokens: okBalances(big.NewInt(0), big.NewInt(0), big.NewInt(0)),
	}
	got := newAggregator().Aggregate(snap, market.PriceMap{"ethereum": dec("3000")})

	if got.Loading {
		t.Fatalf("should not be loading")
	}
	if len(got.Assets) != 1 {
		t.Fatalf("assets = %+v", got.Assets)
	}
	eth := got.Assets[0]
	if eth.Symbol != "ETH" || !eth.Balance.Equal(dec("1.5")) {
		t.Errorf("eth = %+v", eth)
	}
	if eth.Value.StringFixed(2) != "4500.00" {
		t.Errorf("eth value = %s", eth.Value.StringFixed(2))
	}
	if !got.Total.Equal(dec("4500")) {
		t.Errorf("total = %s", got.Total)
	}
}

func TestAggregate_AllZero(t *testing.T) {
	snap := assets.Snapshot{
		Native: big.NewInt(0),
		Tokens: okBalances(big.NewInt(0), big.NewInt(0), big.NewInt(0)),
	}
	got := newAggregator().Aggregate(snap, allPrices())
	if got.Loading || len(got.Assets) != 0 || !got.Total.IsZero() {
		t.Errorf("expected empty, non-loading summary: %+v", got)
	}
}

func TestAggregate_TokensInDeclaredOrder(t *testing.T) {
	snap := assets.Snapshot{
		Native: wei("100000000000000000"), // 0.1
		Tokens: okBalances(
			big.NewInt(25_500_000),   // 25.5 USDC
			wei("2000000000000000000"), // 2 WETH
			wei("10000000000000000000"), // 10 DAI
		),
	}
	got := newAggregator().Aggregate(snap, allPrices())

	wantSymbols := []string{"ETH", "USDC", "WETH", "DAI"}
	if len(got.Assets) != len(wantSymbols) {
		t.Fatalf("assets = %+v", got.Assets)
	}
	for i, s := range wantSymbols {
		if got.Assets[i].Symbol != s {
			t.Errorf("asset %d = %s, want %s", i, got.Assets[i].Symbol, s)
		}
	}

	// 300 + 25.5 + 6000 + 9.99
	if !got.Total.Equal(dec("6335.49")) {
		t.Errorf("total = %s", got.Total)
	}

	sum := decimal.Zero
	for _, a := range got.Assets {
		if !a.Value.Equal(a.Balance.Mul(a.Price)) {
			t.Errorf("%s value %s != balance*price", a.Symbol, a.Value)
		}
		sum = sum.Add(a.Value)
	}
	if !sum.Equal(got.Total) {
		t.Errorf("total %s != sum %s", got.Total, sum)
	}
}

func TestAggregate_MissingTokenPriceIsZeroValue(t *testing.T) {
	snap := assets.Snapshot{
		Native: big.NewInt(0),
		Tokens: okBalances(big.NewInt(0), big.NewInt(0), wei("5000000000000000000")),
	}
	prices := market.PriceMap{"ethereum": dec("3000")}

	a := newAggregator()
	if a.Loading(snap, prices) {
		t.Fatalf("a missing token price must not count as loading")
	}
	got := a.Aggregate(snap, prices)
	if len(got.Assets) != 1 || got.Assets[0].Symbol != "DAI" {
		t.Fatalf("assets = %+v", got.Assets)
	}
	if !got.Assets[0].Value.IsZero() || !got.Assets[0].Price.IsZero() {
		t.Errorf("dai should be valued at zero: %+v", got.Assets[0])
	}
	if !got.Total.IsZero() {
		t.Errorf("total = %s", got.Total)
	}
}

func TestAggregate_FailedTokenReadExcluded(t *testing.T) {
	snap := assets.Snapshot{
		Native: big.NewInt(0),
		Tokens: []assets.TokenBalance{
			{Raw: big.NewInt(0), OK: false},
			{Raw: wei("1000000000000000000"), OK: true},
			{Raw: big.NewInt(0), OK: false},
		},
	}
	got := newAggregator().Aggregate(snap, allPrices())
	if len(got.Assets) != 1 || got.Assets[0].Symbol != "WETH" {
		t.Fatalf("assets = %+v", got.Assets)
	}
	if !got.Total.Equal(dec("3000")) {
		t.Errorf("total = %s", got.Total)
	}
}

func TestAggregate_Loading(t *testing.T) {
	full := assets.Snapshot{Native: big.NewInt(1), Tokens: okBalances(big.NewInt(1), big.NewInt(1), big.NewInt(1))}

	tests := []struct {
		name   string
		snap   assets.Snapshot
		prices market.PriceMap
	}{
		{"native missing", assets.Snapshot{Tokens: full.Tokens}, allPrices()},
		{"tokens missing", assets.Snapshot{Native: full.Native}, allPrices()},
		{"native price missing", full, market.PriceMap{"usd-coin": dec("1")}},
		{"no prices yet", full, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newAggregator().Aggregate(tt.snap, tt.prices)
			if !got.Loading {
				t.Errorf("expected loading")
			}
			if len(got.Assets) != 0 || !got.Total.IsZero() {
				t.Errorf("loading summary should be empty: %+v", got)
			}
		})
	}
}

func TestAggregate_ZeroNativePriceIsNotLoading(t *testing.T) {
	snap := assets.Snapshot{
		Native: wei("1500000000000000000"),
		Tokens: okBalances(big.NewInt(2_000_000), big.NewInt(0), big.NewInt(0)),
	}
	got := newAggregator().Aggregate(snap, market.PriceMap{"ethereum": decimal.Zero, "usd-coin": dec("1")})
	if got.Loading {
		t.Fatalf("a zero native price is still a price")
	}
	if len(got.Assets) != 2 || !got.Assets[0].Value.IsZero() {
		t.Errorf("assets = %+v", got.Assets)
	}
	if !got.Total.Equal(dec("2")) {
		t.Errorf("total = %s", got.Total)
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		raw      *big.Int
		decimals uint8
		want     string
	}{
		{wei("1234500000000000000"), 18, "1.2345"},
		{big.NewInt(1_000_000), 6, "1"},
		{big.NewInt(1), 18, "0.000000000000000001"},
		{nil, 18, "0"},
	}
	for _, tt := range tests {
		if got := ToDecimal(tt.raw, tt.decimals); !got.Equal(dec(tt.want)) {
			t.Errorf("ToDecimal(%v, %d) = %s, want %s", tt.raw, tt.decimals, got, tt.want)
		}
	}
}
