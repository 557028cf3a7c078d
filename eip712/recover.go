package eip712

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// RecoverSigner recovers the address that signed digest from an (v, r, s)
// signature. It is pure and stateless, so fixed key/digest vectors verify it
// deterministically.
//
// Non-canonical encodings are rejected: v must be 27 or 28, r must be a
// nonzero scalar below the curve order, and s must lie in the lower half of
// the order. Without the s bound every signature has a second valid encoding,
// which would give each authorization two distinct signature byte strings.
func RecoverSigner(digest common.Hash, v uint8, r, s [32]byte) (common.Address, error) {
	if v != 27 && v != 28 {
		return common.Address{}, fmt.Errorf("invalid recovery id: %d", v)
	}
	rInt := new(big.Int).SetBytes(r[:])
	if rInt.Sign() == 0 || rInt.Cmp(secp256k1N) >= 0 {
		return common.Address{}, fmt.Errorf("invalid signature r value")
	}
	sInt := new(big.Int).SetBytes(s[:])
	if sInt.Sign() == 0 || sInt.Cmp(secp256k1HalfN) > 0 {
		return common.Address{}, fmt.Errorf("non-canonical signature s value")
	}

	sig := make([]byte, 65)
	copy(sig[0:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = v - 27

	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
