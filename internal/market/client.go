package market

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/quantumauth-io/crypto-tracker/internal/constants"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	demoKeyHeader  = "x-cg-demo-api-key"
	maxBodyBytes   = 4 << 20
	defaultTimeout = 10 * time.Second
)

var ErrUnexpectedStatus = errors.New("market: unexpected status")

type Config struct {
	BaseURL string
	APIKey  string
	PerPage int
	Timeout time.Duration
}

// Client talks to the CoinGecko public REST API.
type Client struct {
	baseURL    string
	apiKey     string
	perPage    int
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = constants.MarketsPerPage
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    base,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		perPage:    perPage,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// DefaultMarketsQuery is the top-by-market-cap page the dashboard lists.
func DefaultMarketsQuery(perPage int) MarketsQuery {
	return MarketsQuery{
		VsCurrency:            constants.VsCurrency,
		Order:                 "market_cap_desc",
		PerPage:               perPage,
		Page:                  1,
		Sparkline:             true,
		PriceChangePercentage: []string{"1h", "24h", "7d"},
	}
}

// TopCoins fetches the first page of coins ranked by market cap.
func (c *Client) TopCoins(ctx context.Context) ([]CoinRecord, error) {
	return c.Markets(ctx, DefaultMarketsQuery(c.perPage))
}

func (c *Client) Markets(ctx context.Context, q MarketsQuery) ([]CoinRecord, error) {
	v := url.Values{}
	v.Set("vs_currency", q.VsCurrency)
	v.Set("order", q.Order)
	v.Set("per_page", strconv.Itoa(q.PerPage))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("sparkline", strconv.FormatBool(q.Sparkline))
	if len(q.PriceChangePercentage) > 0 {
		v.Set("price_change_percentage", strings.Join(q.PriceChangePercentage, ","))
	}

	var out []CoinRecord
	if err := c.getJSON(ctx, "/coins/markets", v, &out); err != nil {
		return nil, errors.Wrap(err, "coins/markets")
	}
	return out, nil
}

// SimplePrice returns the spot price of every id in vsCurrency. Ids the API
// does not know are absent from the map; a known id without a quote in
// vsCurrency is priced at zero.
func (c *Client) SimplePrice(ctx context.Context, ids []string, vsCurrency string) (PriceMap, error) {
	if len(ids) == 0 {
		return PriceMap{}, nil
	}
	vs := strings.ToLower(strings.TrimSpace(vsCurrency))
	if vs == "" {
		vs = constants.VsCurrency
	}

	v := url.Values{}
	v.Set("ids", strings.Join(ids, ","))
	v.Set("vs_currencies", vs)

	var raw map[string]map[string]decimal.Decimal
	if err := c.getJSON(ctx, "/simple/price", v, &raw); err != nil {
		return nil, errors.Wrap(err, "simple/price")
	}

	out := make(PriceMap, len(raw))
	for id, quotes := range raw {
		out[id] = quotes[vs]
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(demoKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(ErrUnexpectedStatus, "status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrap(err, "decode json")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
