package assets

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

const erc20BalanceOfABI = `[{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var erc20ABI = mustParseABI(erc20BalanceOfABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// BatchCaller is satisfied by *rpc.Client.
type BatchCaller interface {
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

// Reader reads the native balance and every tracked token balance of an
// owner in one JSON-RPC batch.
type Reader struct {
	caller BatchCaller
	native NativeAsset
	tokens TokenList
}

func NewReader(caller BatchCaller, native NativeAsset, tokens TokenList) *Reader {
	return &Reader{caller: caller, native: native, tokens: tokens}
}

func (r *Reader) Tokens() TokenList { return r.tokens }

// Read returns whatever the batch produced. A token whose call failed is
// reported with OK=false and a zero balance; a failed native read leaves
// Snapshot.Native nil. Only a transport failure of the whole batch returns an
// error, in which case Tokens is nil as well.
func (r *Reader) Read(ctx context.Context, owner common.Address) (Snapshot, error) {
	snap := Snapshot{Owner: owner}
	if r.caller == nil {
		return snap, errors.New("assets: rpc client not initialized")
	}

	// zero address never holds anything worth a round trip
	if owner == (common.Address{}) {
		snap.Native = new(big.Int)
		snap.Tokens = make([]TokenBalance, r.tokens.Len())
		for i := range snap.Tokens {
			snap.Tokens[i] = TokenBalance{Raw: new(big.Int), OK: true}
		}
		return snap, nil
	}

	calldata, err := erc20ABI.Pack("balanceOf", owner)
	if err != nil {
		return snap, errors.Wrap(err, "assets: pack balanceOf")
	}

	var nativeResult hexutil.Big
	tokenResults := make([]hexutil.Bytes, r.tokens.Len())

	batch := make([]rpc.BatchElem, 0, r.tokens.Len()+1)
	batch = append(batch, rpc.BatchElem{
		Method: "eth_getBalance",
		Args:   []any{owner, "latest"},
		Result: &nativeResult,
	})
	for i := 0; i < r.tokens.Len(); i++ {
		batch = append(batch, rpc.BatchElem{
			Method: "eth_call",
			Args: []any{
				map[string]any{
					"to":   r.tokens.At(i).Address,
					"data": hexutil.Bytes(calldata),
				},
				"latest",
			},
			Result: &tokenResults[i],
		})
	}

	if err := r.caller.BatchCallContext(ctx, batch); err != nil {
		return snap, errors.Wrap(err, "assets: balance batch")
	}

	if batch[0].Error != nil {
		log.Warn("native balance read failed", "owner", owner.Hex(), "error", batch[0].Error)
	} else {
		snap.Native = new(big.Int).Set(nativeResult.ToInt())
	}

	snap.Tokens = make([]TokenBalance, r.tokens.Len())
	for i := range snap.Tokens {
		tok := r.tokens.At(i)
		elem := batch[i+1]
		if elem.Error != nil {
			log.Warn("token balance read failed", "token", tok.Symbol, "owner", owner.Hex(), "error", elem.Error)
			snap.Tokens[i] = TokenBalance{Raw: new(big.Int)}
			continue
		}
		bal, err := decodeBalance(tokenResults[i])
		if err != nil {
			log.Warn("token balance decode failed", "token", tok.Symbol, "owner", owner.Hex(), "error", err)
			snap.Tokens[i] = TokenBalance{Raw: new(big.Int)}
			continue
		}
		snap.Tokens[i] = TokenBalance{Raw: bal, OK: true}
	}

	return snap, nil
}

func decodeBalance(data []byte) (*big.Int, error) {
	out, err := erc20ABI.Unpack("balanceOf", data)
	if err != nil {
		return nil, errors.Wrap(err, "unpack balanceOf")
	}
	if len(out) != 1 {
		return nil, errors.Newf("unexpected balanceOf outputs: %d", len(out))
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Newf("unexpected balanceOf type %T", out[0])
	}
	return bal, nil
}
