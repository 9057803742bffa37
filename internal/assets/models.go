package assets

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenDescriptor is a compiled-in ERC-20 the portfolio tracks.
type TokenDescriptor struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals uint8          `json:"decimals"`
	PriceID  string         `json:"priceId"` // CoinGecko id
	Icon     string         `json:"icon"`
}

// NativeAsset describes the chain's gas coin.
type NativeAsset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	PriceID  string `json:"priceId"`
	Icon     string `json:"icon"`
}

// TokenList is an immutable, ordered set of token descriptors.
type TokenList struct {
	tokens []TokenDescriptor
}

func NewTokenList(tokens ...TokenDescriptor) TokenList {
	cp := make([]TokenDescriptor, len(tokens))
	copy(cp, tokens)
	return TokenList{tokens: cp}
}

func (l TokenList) Len() int { return len(l.tokens) }

// At returns the i-th descriptor in declared order.
func (l TokenList) At(i int) TokenDescriptor { return l.tokens[i] }

// All returns a copy; mutating it does not affect the list.
func (l TokenList) All() []TokenDescriptor {
	cp := make([]TokenDescriptor, len(l.tokens))
	copy(cp, l.tokens)
	return cp
}

// PriceIDs returns the native price id followed by each token's, in order.
func (l TokenList) PriceIDs(native NativeAsset) []string {
	out := make([]string, 0, len(l.tokens)+1)
	out = append(out, native.PriceID)
	for _, t := range l.tokens {
		out = append(out, t.PriceID)
	}
	return out
}

// TokenBalance is the outcome of one balanceOf call.
type TokenBalance struct {
	Raw *big.Int
	OK  bool
}

// Snapshot is a single batched balance read for one owner.
// Native == nil means the native read has not completed (or failed).
// Tokens == nil means the token batch has not completed.
type Snapshot struct {
	Owner  common.Address
	Native *big.Int
	Tokens []TokenBalance
}
