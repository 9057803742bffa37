package chains

import "strings"

// NetworkConfig describes a network and its RPC endpoints.
type NetworkConfig struct {
	Name     string `json:"name" yaml:"name"`
	ChainID  uint64 `json:"chainId" yaml:"chainId" mapstructure:"chainId"`
	RPCs     []RPC  `json:"rpcs" yaml:"rpcs"`
	Explorer string `json:"explorer" yaml:"explorer" mapstructure:"explorer"`
}

type RPC struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

type ResolvedChain struct {
	NetworkName string
	ChainID     uint64
	Explorer    string

	RPCName string
	URL     string
}

func (n *NetworkConfig) Normalize() {
	if n == nil {
		return
	}
	n.Name = strings.ToLower(strings.TrimSpace(n.Name))
	n.Explorer = strings.TrimSpace(n.Explorer)
	for i := range n.RPCs {
		n.RPCs[i].Name = strings.TrimSpace(n.RPCs[i].Name)
		n.RPCs[i].URL = strings.TrimSpace(n.RPCs[i].URL)
	}
}
