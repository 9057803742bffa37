package chains

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

var ErrChainIDMismatch = errors.New("chains: rpc endpoint serves a different chain")

// Service holds the dialed clients for the single network the portfolio
// reads from.
type Service struct {
	chain ResolvedChain
	rpc   *rpc.Client
	eth   *ethclient.Client
}

// Resolve picks the RPC by preferred name, otherwise the first one.
func Resolve(network NetworkConfig, preferredRPC string) (ResolvedChain, error) {
	network.RPCs = append([]RPC(nil), network.RPCs...)
	network.Normalize()
	if network.Name == "" {
		return ResolvedChain{}, errors.New("network name is empty")
	}

	var selected *RPC
	if preferred := strings.TrimSpace(preferredRPC); preferred != "" {
		for i := range network.RPCs {
			if strings.EqualFold(network.RPCs[i].Name, preferred) {
				selected = &network.RPCs[i]
				break
			}
		}
	}
	if selected == nil {
		if len(network.RPCs) == 0 {
			return ResolvedChain{}, errors.Newf("network %q has no RPCs configured", network.Name)
		}
		selected = &network.RPCs[0]
	}
	if selected.URL == "" {
		return ResolvedChain{}, errors.Newf("network %q rpc %q url is empty", network.Name, selected.Name)
	}

	return ResolvedChain{
		NetworkName: network.Name,
		ChainID:     network.ChainID,
		Explorer:    network.Explorer,
		RPCName:     selected.Name,
		URL:         selected.URL,
	}, nil
}

// Dial connects to the resolved endpoint. A chain id that cannot be read or
// does not match is logged; balance reads against such an endpoint fail on
// their own and leave the portfolio loading.
func Dial(ctx context.Context, network NetworkConfig, preferredRPC string) (*Service, error) {
	resolved, err := Resolve(network, preferredRPC)
	if err != nil {
		return nil, err
	}

	rc, err := rpc.DialContext(ctx, resolved.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %q (%s)", resolved.NetworkName, resolved.RPCName)
	}
	s := &Service{chain: resolved, rpc: rc, eth: ethclient.NewClient(rc)}

	if err := s.VerifyChainID(ctx); err != nil {
		log.Warn("chain id check failed", "network", resolved.NetworkName, "rpc", resolved.RPCName, "error", err)
	} else {
		log.Info("chain connected", "network", resolved.NetworkName, "rpc", resolved.RPCName, "chain_id", resolved.ChainID)
	}

	return s, nil
}

// VerifyChainID asks the endpoint for its chain id. Networks without a
// declared chain id always pass.
func (s *Service) VerifyChainID(ctx context.Context) error {
	if s.chain.ChainID == 0 {
		return nil
	}
	got, err := s.eth.ChainID(ctx)
	if err != nil {
		return errors.Wrapf(err, "chain id of %q", s.chain.NetworkName)
	}
	if !got.IsUint64() || got.Uint64() != s.chain.ChainID {
		return errors.Wrapf(ErrChainIDMismatch, "%s: want %d, got %s", s.chain.NetworkName, s.chain.ChainID, got)
	}
	return nil
}

// RPC is the raw client used for batched reads.
func (s *Service) RPC() *rpc.Client { return s.rpc }

func (s *Service) Close() {
	if s == nil || s.eth == nil {
		return
	}
	// closes the underlying rpc client too
	s.eth.Close()
}
