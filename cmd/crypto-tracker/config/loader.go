package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	utilsconfig "github.com/quantumauth-io/quantum-go-utils/config"

	"github.com/quantumauth-io/crypto-tracker/internal/chains"
	"github.com/quantumauth-io/crypto-tracker/internal/constants"
	"github.com/quantumauth-io/crypto-tracker/internal/httpui"
	"github.com/quantumauth-io/crypto-tracker/internal/market"
	"github.com/quantumauth-io/crypto-tracker/internal/wallet"
)

const minSessionSecretLen = 32

type ServerSettings struct {
	Host               string
	Port               string
	PublicURL          string
	AllowOrigins       []string
	SessionSecret      string
	SessionIdleMinutes int
	SecureCookies      bool
}

type MarketSettings struct {
	BaseURL             string
	APIKey              string
	PerPage             int
	TimeoutSeconds      int
	PriceRefreshSeconds int
}

type ChainSettings struct {
	PreferredRPC string
	Network      chains.NetworkConfig `mapstructure:"Network"`
}

type WalletSettings struct {
	Connectors []string
}

type MiniAppSettings struct {
	Name                  string
	IconURL               string
	ImageURL              string
	ButtonTitle           string
	SplashImageURL        string
	SplashBackgroundColor string
	AccountAssociation    httpui.AccountAssociation `mapstructure:"AccountAssociation"`
}

type Config struct {
	Server  *ServerSettings  `mapstructure:"Server"`
	Market  *MarketSettings  `mapstructure:"Market"`
	Chain   *ChainSettings   `mapstructure:"Chain"`
	Wallet  *WalletSettings  `mapstructure:"Wallet"`
	MiniApp *MiniAppSettings `mapstructure:"MiniApp"`

	generatedSecret bool
}

// GeneratedSecret reports whether Validate had to make up a session secret.
func (c *Config) GeneratedSecret() bool { return c.generatedSecret }

// SecureCookies is on when configured or when the app is served over https.
func (c *Config) SecureCookies() bool {
	return c.Server.SecureCookies || strings.HasPrefix(strings.ToLower(c.Server.PublicURL), "https://")
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}

	return utilsconfig.ParseConfigWithEmbedded[Config](paths, EmbeddedConfigYAML)
}

// ApplyEnv lets the deployment environment override secrets and endpoints.
func (c *Config) ApplyEnv() error {
	c.ensureSections()

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return errors.Newf("invalid PORT %q", v)
		}
		c.Server.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("CT_SESSION_SECRET")); v != "" {
		c.Server.SessionSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("CT_PUBLIC_URL")); v != "" {
		c.Server.PublicURL = v
	}
	if v := strings.TrimSpace(os.Getenv("COINGECKO_API_KEY")); v != "" {
		c.Market.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("BASE_RPC_URL")); v != "" {
		rpc := chains.RPC{Name: "env", URL: v}
		c.Chain.Network.RPCs = append([]chains.RPC{rpc}, c.Chain.Network.RPCs...)
		c.Chain.PreferredRPC = rpc.Name
	}
	return nil
}

func (c *Config) ensureSections() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Market == nil {
		c.Market = &MarketSettings{}
	}
	if c.Chain == nil {
		c.Chain = &ChainSettings{}
	}
	if c.Wallet == nil {
		c.Wallet = &WalletSettings{}
	}
	if c.MiniApp == nil {
		c.MiniApp = &MiniAppSettings{}
	}
}

// Validate fills defaults and rejects values the server cannot run with.
func (c *Config) Validate() error {
	c.ensureSections()

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.SessionSecret == "" {
		// sessions will not survive a restart
		c.Server.SessionSecret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		c.generatedSecret = true
	}
	if len(c.Server.SessionSecret) < minSessionSecretLen {
		return errors.Newf("session secret must be at least %d characters (set CT_SESSION_SECRET)", minSessionSecretLen)
	}
	if c.Server.PublicURL != "" {
		u, err := url.Parse(c.Server.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Newf("invalid public url %q", c.Server.PublicURL)
		}
	}
	if c.Server.SessionIdleMinutes < 0 {
		return errors.New("session idle minutes must not be negative")
	}

	if c.Market.PerPage <= 0 {
		c.Market.PerPage = constants.MarketsPerPage
	}
	if c.Market.PerPage > 250 {
		return errors.Newf("market per page %d exceeds 250", c.Market.PerPage)
	}
	if c.Market.PriceRefreshSeconds <= 0 {
		c.Market.PriceRefreshSeconds = constants.DefaultPriceRefreshSeconds
	}

	c.Chain.Network.Normalize()
	if c.Chain.Network.ChainID == 0 {
		c.Chain.Network.ChainID = constants.DefaultChainID
	}
	if _, err := chains.Resolve(c.Chain.Network, c.Chain.PreferredRPC); err != nil {
		return errors.Wrap(err, "chain")
	}

	if len(c.Wallet.Connectors) == 0 {
		c.Wallet.Connectors = []string{wallet.ConnectorInjected, wallet.ConnectorFarcaster}
	}
	if _, err := wallet.ConnectorsByID(c.Wallet.Connectors); err != nil {
		return errors.Wrap(err, "wallet")
	}

	if strings.TrimSpace(c.MiniApp.Name) == "" {
		c.MiniApp.Name = "Crypto Tracker"
	}
	return nil
}

func (c *Config) MarketClientConfig() market.Config {
	return market.Config{
		BaseURL: c.Market.BaseURL,
		APIKey:  c.Market.APIKey,
		PerPage: c.Market.PerPage,
		Timeout: time.Duration(c.Market.TimeoutSeconds) * time.Second,
	}
}

func (c *Config) PriceInterval() time.Duration {
	return time.Duration(c.Market.PriceRefreshSeconds) * time.Second
}

func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.Server.SessionIdleMinutes) * time.Minute
}

func (c *Config) Connectors() ([]wallet.Connector, error) {
	return wallet.ConnectorsByID(c.Wallet.Connectors)
}

func (c *Config) MiniAppInfo() httpui.MiniApp {
	return httpui.MiniApp{
		Name:                  c.MiniApp.Name,
		PublicURL:             c.Server.PublicURL,
		IconURL:               c.MiniApp.IconURL,
		ImageURL:              c.MiniApp.ImageURL,
		ButtonTitle:           c.MiniApp.ButtonTitle,
		SplashImageURL:        c.MiniApp.SplashImageURL,
		SplashBackgroundColor: c.MiniApp.SplashBackgroundColor,
		AccountAssociation:    c.MiniApp.AccountAssociation,
	}
}

// CORSOrigins returns the configured origins plus the public URL's own.
func (c *Config) CORSOrigins() []string {
	out := append([]string(nil), c.Server.AllowOrigins...)
	if u, err := url.Parse(c.Server.PublicURL); err == nil && u.Scheme != "" && u.Host != "" {
		out = append(out, u.Scheme+"://"+u.Host)
	}
	return out
}
