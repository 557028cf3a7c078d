// Package signing implements the off-chain half of the authorization
// protocol: holding a private key, computing the typed-data digest for an
// authorization, and producing the (v, r, s) signature a relayer submits.
package signing

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/gaslesspay/fiattoken/eip712"
)

// Signer signs authorization digests with an ECDSA private key.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSignerFromPrivateKey creates a signer from a hex-encoded private key
// (with or without "0x" prefix).
func NewSignerFromPrivateKey(privateKeyHex string) (*Signer, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return NewSigner(privateKey), nil
}

// NewSigner creates a signer from an existing key.
func NewSigner(privateKey *ecdsa.PrivateKey) *Signer {
	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// GenerateSigner creates a signer with a fresh random key. Useful for tests
// and local tooling.
func GenerateSigner() (*Signer, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return NewSigner(privateKey), nil
}

// Address returns the Ethereum address of the signer.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignDigest signs a 32-byte digest, returning the signature in its
// three-part recoverable form with v adjusted to 27/28.
func (s *Signer) SignDigest(digest common.Hash) (v uint8, r, sComp [32]byte, err error) {
	signature, signErr := crypto.Sign(digest.Bytes(), s.privateKey)
	if signErr != nil {
		err = fmt.Errorf("failed to sign: %w", signErr)
		return
	}

	copy(r[:], signature[0:32])
	copy(sComp[:], signature[32:64])
	// Adjust v value for Ethereum (recovery ID 0/1 → 27/28)
	v = signature[64] + 27
	return
}

// SignTransferAuthorization signs a TransferWithAuthorization message bound
// to domain.
func (s *Signer) SignTransferAuthorization(
	domain eip712.Domain,
	to common.Address,
	value, validAfter, validBefore *big.Int,
	nonce [32]byte,
) (v uint8, r, sComp [32]byte, err error) {
	digest := eip712.TransferDigest(domain.Separator(), s.address, to, value, validAfter, validBefore, nonce)
	return s.SignDigest(digest)
}

// SignReceiveAuthorization signs a ReceiveWithAuthorization message bound to
// domain.
func (s *Signer) SignReceiveAuthorization(
	domain eip712.Domain,
	to common.Address,
	value, validAfter, validBefore *big.Int,
	nonce [32]byte,
) (v uint8, r, sComp [32]byte, err error) {
	digest := eip712.ReceiveDigest(domain.Separator(), s.address, to, value, validAfter, validBefore, nonce)
	return s.SignDigest(digest)
}

// SignCancelAuthorization signs a CancelAuthorization message bound to
// domain.
func (s *Signer) SignCancelAuthorization(
	domain eip712.Domain,
	nonce [32]byte,
) (v uint8, r, sComp [32]byte, err error) {
	digest := eip712.CancelDigest(domain.Separator(), s.address, nonce)
	return s.SignDigest(digest)
}

// RandomNonce draws a fresh 32-byte nonce. Nonces are authorizer-chosen and
// need only be unique per authorizer, not sequential.
func RandomNonce() ([32]byte, error) {
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nonce, fmt.Errorf("failed to draw nonce: %w", err)
	}
	return nonce, nil
}
