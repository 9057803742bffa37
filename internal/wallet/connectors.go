package wallet

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	ConnectorInjected  = "injected"
	ConnectorFarcaster = "farcaster"

	// HostFarcaster is sent by pages running inside a Farcaster client.
	HostFarcaster = "farcaster"
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrSignerMismatch   = errors.New("signature does not match address")
	ErrStaleChallenge   = errors.New("signed message does not match the current challenge")
	ErrUnknownConnector = errors.New("unknown connector")
)

// ConnectRequest carries what the browser sent. Challenge is filled in by
// the session before the connector sees it.
type ConnectRequest struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Host      string `json:"host,omitempty"`
	Challenge string `json:"-"`
}

// Connector is one way of learning the user's wallet address.
type Connector interface {
	ID() string
	Name() string
	// Ready reports whether the request carries what this connector needs.
	Ready(req ConnectRequest) bool
	Connect(ctx context.Context, req ConnectRequest) (common.Address, error)
}

type ConnectorInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InjectedConnector trusts a browser wallet that signed the session
// challenge with personal_sign.
type InjectedConnector struct{}

func (InjectedConnector) ID() string   { return ConnectorInjected }
func (InjectedConnector) Name() string { return "Browser Wallet" }

func (InjectedConnector) Ready(req ConnectRequest) bool {
	return strings.TrimSpace(req.Signature) != ""
}

func (InjectedConnector) Connect(ctx context.Context, req ConnectRequest) (common.Address, error) {
	claimed, err := ParseAddress(req.Address)
	if err != nil {
		return common.Address{}, err
	}
	if req.Challenge == "" || req.Message != req.Challenge {
		return common.Address{}, ErrStaleChallenge
	}
	signer, err := RecoverSigner(req.Message, req.Signature)
	if err != nil {
		return common.Address{}, err
	}
	if signer != claimed {
		return common.Address{}, errors.Wrapf(ErrSignerMismatch, "recovered %s", signer.Hex())
	}
	return claimed, nil
}

// FarcasterConnector takes the address handed over by the Mini App host
// wallet as is. It only answers requests made from inside a Farcaster client.
type FarcasterConnector struct{}

func (FarcasterConnector) ID() string   { return ConnectorFarcaster }
func (FarcasterConnector) Name() string { return "Farcaster Wallet" }

func (FarcasterConnector) Ready(req ConnectRequest) bool {
	return strings.EqualFold(strings.TrimSpace(req.Host), HostFarcaster)
}

func (FarcasterConnector) Connect(ctx context.Context, req ConnectRequest) (common.Address, error) {
	return ParseAddress(req.Address)
}

// ConnectorsByID builds the connector list in the configured order.
func ConnectorsByID(ids []string) ([]Connector, error) {
	out := make([]Connector, 0, len(ids))
	for _, raw := range ids {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case ConnectorInjected:
			out = append(out, InjectedConnector{})
		case ConnectorFarcaster:
			out = append(out, FarcasterConnector{})
		default:
			return nil, errors.Wrapf(ErrUnknownConnector, "%q", raw)
		}
	}
	return out, nil
}

// ParseAddress accepts hex with or without 0x, any case.
func ParseAddress(raw string) (common.Address, error) {
	a := strings.TrimSpace(raw)
	if a == "" {
		return common.Address{}, errors.Wrap(ErrInvalidAddress, "empty address")
	}
	if !strings.HasPrefix(a, "0x") && !strings.HasPrefix(a, "0X") {
		a = "0x" + a
	}
	if !common.IsHexAddress(a) {
		return common.Address{}, errors.Wrapf(ErrInvalidAddress, "%q", raw)
	}
	addr := common.HexToAddress(a)
	if addr == (common.Address{}) {
		return common.Address{}, errors.Wrap(ErrInvalidAddress, "zero address")
	}
	return addr, nil
}

// RecoverSigner returns the address that produced an EIP-191 personal_sign
// signature over message.
func RecoverSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return common.Address{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.Wrapf(ErrInvalidSignature, "length %d", len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return crypto.PubkeyToAddress(*pub), nil
}
