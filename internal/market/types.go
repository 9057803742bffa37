package market

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CoinRecord is one row of the /coins/markets response.
type CoinRecord struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            int      `json:"market_cap_rank"`
	TotalVolume              float64  `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	High24h                  *float64 `json:"high_24h"`
	Low24h                   *float64 `json:"low_24h"`

	PriceChangePercentage1h *float64   `json:"price_change_percentage_1h_in_currency,omitempty"`
	PriceChangePercentage7d *float64   `json:"price_change_percentage_7d_in_currency,omitempty"`
	Sparkline7d             *Sparkline `json:"sparkline_in_7d,omitempty"`
}

type Sparkline struct {
	Price []float64 `json:"price"`
}

// Change24h returns the 24h change, zero when the API sent null.
func (c CoinRecord) Change24h() float64 {
	if c.PriceChangePercentage24h == nil {
		return 0
	}
	return *c.PriceChangePercentage24h
}

// CoinStats is the expanded view shown in the coin detail modal.
type CoinStats struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Symbol            string   `json:"symbol"`
	Image             string   `json:"image"`
	CurrentPrice      float64  `json:"current_price"`
	MarketCapBillions float64  `json:"market_cap_billions"`
	VolumeBillions    float64  `json:"volume_billions"`
	Change24h         float64  `json:"change_24h"`
	Rank              int      `json:"rank"`
	High24h           *float64 `json:"high_24h,omitempty"`
	Low24h            *float64 `json:"low_24h,omitempty"`
}

func (c CoinRecord) Stats() CoinStats {
	return CoinStats{
		ID:                c.ID,
		Name:              c.Name,
		Symbol:            strings.ToUpper(c.Symbol),
		Image:             c.Image,
		CurrentPrice:      c.CurrentPrice,
		MarketCapBillions: Billions(c.MarketCap),
		VolumeBillions:    Billions(c.TotalVolume),
		Change24h:         c.Change24h(),
		Rank:              c.MarketCapRank,
		High24h:           nonZero(c.High24h),
		Low24h:            nonZero(c.Low24h),
	}
}

func Billions(v float64) float64 { return v / 1e9 }

// FindCoin looks a record up by its CoinGecko id.
func FindCoin(coins []CoinRecord, id string) (CoinRecord, bool) {
	for _, c := range coins {
		if c.ID == id {
			return c, true
		}
	}
	return CoinRecord{}, false
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

// PriceMap maps a CoinGecko price id to its spot price in the quote currency.
type PriceMap map[string]decimal.Decimal

// Price returns the price for id and whether the lookup had it.
func (p PriceMap) Price(id string) (decimal.Decimal, bool) {
	v, ok := p[id]
	return v, ok
}

func (p PriceMap) Clone() PriceMap {
	if p == nil {
		return nil
	}
	out := make(PriceMap, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// MarketsQuery mirrors the query string of /coins/markets.
type MarketsQuery struct {
	VsCurrency            string
	Order                 string
	PerPage               int
	Page                  int
	Sparkline             bool
	PriceChangePercentage []string
}
