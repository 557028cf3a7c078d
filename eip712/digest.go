// Package eip712 implements the typed-data hashing and signature recovery
// used by the EIP-3009 authorization protocol. Digests follow the two-level
// EIP-712 structure: a domain separator binding signatures to one contract
// instance and chain, and a per-message struct hash binding the message type
// and its fields.
package eip712

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Canonical EIP-712 type strings. The transfer and receive shapes carry the
// same field layout but distinct type strings, so a signature over one can
// never verify as the other.
const (
	EIP712DomainType              = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	TransferWithAuthorizationType = "TransferWithAuthorization(address from,address to,uint256 value,uint256 validAfter,uint256 validBefore,bytes32 nonce)"
	ReceiveWithAuthorizationType  = "ReceiveWithAuthorization(address from,address to,uint256 value,uint256 validAfter,uint256 validBefore,bytes32 nonce)"
	CancelAuthorizationType       = "CancelAuthorization(address authorizer,bytes32 nonce)"
)

// Precomputed typehashes, exposed as constants for off-chain tooling that
// constructs compatible signatures.
var (
	EIP712DomainTypeHash              = crypto.Keccak256Hash([]byte(EIP712DomainType))
	TransferWithAuthorizationTypeHash = crypto.Keccak256Hash([]byte(TransferWithAuthorizationType))
	ReceiveWithAuthorizationTypeHash  = crypto.Keccak256Hash([]byte(ReceiveWithAuthorizationType))
	CancelAuthorizationTypeHash       = crypto.Keccak256Hash([]byte(CancelAuthorizationType))
)

// Domain identifies the token instance and chain every signature is bound to.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// Separator derives the 32-byte domain separator. It depends only on the
// domain fields, so callers compute it once at construction time.
func (d Domain) Separator() common.Hash {
	return crypto.Keccak256Hash(
		EIP712DomainTypeHash.Bytes(),
		crypto.Keccak256([]byte(d.Name)),
		crypto.Keccak256([]byte(d.Version)),
		encodeUint(d.ChainID),
		encodeAddress(d.VerifyingContract),
	)
}

// TransferDigest computes the signable digest for a TransferWithAuthorization
// message.
func TransferDigest(separator common.Hash, from, to common.Address, value, validAfter, validBefore *big.Int, nonce [32]byte) common.Hash {
	return Digest(separator, authorizationStructHash(TransferWithAuthorizationTypeHash, from, to, value, validAfter, validBefore, nonce))
}

// ReceiveDigest computes the signable digest for a ReceiveWithAuthorization
// message.
func ReceiveDigest(separator common.Hash, from, to common.Address, value, validAfter, validBefore *big.Int, nonce [32]byte) common.Hash {
	return Digest(separator, authorizationStructHash(ReceiveWithAuthorizationTypeHash, from, to, value, validAfter, validBefore, nonce))
}

// CancelDigest computes the signable digest for a CancelAuthorization message.
func CancelDigest(separator common.Hash, authorizer common.Address, nonce [32]byte) common.Hash {
	structHash := crypto.Keccak256Hash(
		CancelAuthorizationTypeHash.Bytes(),
		encodeAddress(authorizer),
		nonce[:],
	)
	return Digest(separator, structHash)
}

// Digest assembles the final signable hash:
// keccak256(0x19 0x01 || domainSeparator || structHash)
func Digest(separator, structHash common.Hash) common.Hash {
	rawData := []byte{0x19, 0x01}
	rawData = append(rawData, separator.Bytes()...)
	rawData = append(rawData, structHash.Bytes()...)
	return crypto.Keccak256Hash(rawData)
}

func authorizationStructHash(typeHash common.Hash, from, to common.Address, value, validAfter, validBefore *big.Int, nonce [32]byte) common.Hash {
	return crypto.Keccak256Hash(
		typeHash.Bytes(),
		encodeAddress(from),
		encodeAddress(to),
		encodeUint(value),
		encodeUint(validAfter),
		encodeUint(validBefore),
		nonce[:],
	)
}

// encodeAddress ABI-encodes an address as a left-padded 32-byte word.
func encodeAddress(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

// encodeUint ABI-encodes an unsigned integer as a 32-byte big-endian word.
// A nil value encodes as zero, so a Domain with no chain id set hashes like
// chain id 0 instead of panicking.
func encodeUint(v *big.Int) []byte {
	if v == nil {
		v = new(big.Int)
	}
	return math.U256Bytes(new(big.Int).Set(v))
}
