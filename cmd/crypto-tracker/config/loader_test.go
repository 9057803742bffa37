package config

import (
	"strings"
	"testing"
	"time"

	"github.com/quantumauth-io/crypto-tracker/internal/chains"
	"github.com/quantumauth-io/crypto-tracker/internal/wallet"
)

func validConfig() *Config {
	return &Config{
		Server: &ServerSettings{
			Port:          "8080",
			PublicURL:     "https://tracker.example.com",
			SessionSecret: strings.Repeat("s", 40),
		},
		Market: &MarketSettings{},
		Chain: &ChainSettings{
			Network: chains.NetworkConfig{
				Name:    "Base",
				ChainID: 8453,
				RPCs:    []chains.RPC{{Name: "public", URL: "https://mainnet.base.org"}},
			},
		},
		Wallet:  &WalletSettings{},
		MiniApp: &MiniAppSettings{},
	}
}

func TestValidate_Defaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Market.PerPage != 50 {
		t.Errorf("PerPage = %d", c.Market.PerPage)
	}
	if c.PriceInterval() != 60*time.Second {
		t.Errorf("PriceInterval = %v", c.PriceInterval())
	}
	if c.Chain.Network.Name != "base" {
		t.Errorf("network name not normalized: %q", c.Chain.Network.Name)
	}
	got, err := c.Connectors()
	if err != nil || len(got) != 2 || got[0].ID() != wallet.ConnectorInjected {
		t.Errorf("Connectors = %v, %v", got, err)
	}
	if c.MiniApp.Name != "Crypto Tracker" {
		t.Errorf("MiniApp.Name = %q", c.MiniApp.Name)
	}
	if !c.SecureCookies() {
		t.Errorf("https public url should turn on secure cookies")
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.Server.SessionSecret = "short" }},
		{"bad public url", func(c *Config) { c.Server.PublicURL = "not a url" }},
		{"per page too large", func(c *Config) { c.Market.PerPage = 500 }},
		{"no rpc", func(c *Config) { c.Chain.Network.RPCs = nil }},
		{"unknown connector", func(c *Config) { c.Wallet.Connectors = []string{"walletconnect"} }},
		{"negative idle", func(c *Config) { c.Server.SessionIdleMinutes = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestValidate_GeneratesSecret(t *testing.T) {
	c := validConfig()
	c.Server.SessionSecret = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !c.GeneratedSecret() || len(c.Server.SessionSecret) < minSessionSecretLen {
		t.Errorf("secret = %q", c.Server.SessionSecret)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CT_SESSION_SECRET", strings.Repeat("x", 32))
	t.Setenv("COINGECKO_API_KEY", "cg-key")
	t.Setenv("BASE_RPC_URL", "https://base.example.com")
	t.Setenv("CT_PUBLIC_URL", "https://mini.example.com")

	c := validConfig()
	if err := c.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if c.Server.Port != "9090" || c.Market.APIKey != "cg-key" || c.Server.PublicURL != "https://mini.example.com" {
		t.Errorf("overrides not applied: %+v %+v", c.Server, c.Market)
	}

	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	resolved, err := chains.Resolve(c.Chain.Network, c.Chain.PreferredRPC)
	if err != nil || resolved.URL != "https://base.example.com" {
		t.Errorf("resolved = %+v, %v", resolved, err)
	}

	origins := c.CORSOrigins()
	if origins[len(origins)-1] != "https://mini.example.com" {
		t.Errorf("origins = %v", origins)
	}
}

func TestApplyEnv_BadPort(t *testing.T) {
	t.Setenv("PORT", "http")
	if err := validConfig().ApplyEnv(); err == nil {
		t.Errorf("expected error")
	}
}
