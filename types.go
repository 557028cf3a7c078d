package fiattoken

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Authorization is the wire form of an EIP-3009 authorization as exchanged
// with off-chain tooling: addresses and the nonce as 0x-hex strings, numeric
// fields as decimal strings.
type Authorization struct {
	From        string `json:"from"`        // authorizer address (hex)
	To          string `json:"to"`          // payee address (hex)
	Value       string `json:"value"`       // amount in the token's smallest unit, decimal string
	ValidAfter  string `json:"validAfter"`  // unix timestamp, decimal string, inclusive lower bound
	ValidBefore string `json:"validBefore"` // unix timestamp, decimal string, exclusive upper bound
	Nonce       string `json:"nonce"`       // 32-byte nonce as hex string
}

// Cancellation is the wire form of an EIP-3009 cancellation.
type Cancellation struct {
	Authorizer string `json:"authorizer"` // address whose authorization is withdrawn (hex)
	Nonce      string `json:"nonce"`      // 32-byte nonce as hex string
}

// ParsedAuthorization is the engine form of an Authorization.
type ParsedAuthorization struct {
	From        common.Address
	To          common.Address
	Value       *big.Int
	ValidAfter  *big.Int
	ValidBefore *big.Int
	Nonce       [32]byte
}

// Parse converts the wire form into engine types.
// Returns an invalid_payload error if any field is malformed.
func (a Authorization) Parse() (ParsedAuthorization, error) {
	var parsed ParsedAuthorization

	if !common.IsHexAddress(a.From) {
		return parsed, NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid from address: %s", a.From), nil)
	}
	if !common.IsHexAddress(a.To) {
		return parsed, NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid to address: %s", a.To), nil)
	}
	parsed.From = common.HexToAddress(a.From)
	parsed.To = common.HexToAddress(a.To)

	var ok bool
	if parsed.Value, ok = new(big.Int).SetString(a.Value, 10); !ok || parsed.Value.Sign() < 0 {
		return parsed, NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid value: %s", a.Value), nil)
	}
	if parsed.ValidAfter, ok = new(big.Int).SetString(a.ValidAfter, 10); !ok || parsed.ValidAfter.Sign() < 0 {
		return parsed, NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid validAfter: %s", a.ValidAfter), nil)
	}
	if parsed.ValidBefore, ok = new(big.Int).SetString(a.ValidBefore, 10); !ok || parsed.ValidBefore.Sign() < 0 {
		return parsed, NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid validBefore: %s", a.ValidBefore), nil)
	}

	nonce, err := ParseNonce(a.Nonce)
	if err != nil {
		return parsed, err
	}
	parsed.Nonce = nonce

	return parsed, nil
}

// Parse converts the wire form into engine types.
func (c Cancellation) Parse() (common.Address, [32]byte, error) {
	if !common.IsHexAddress(c.Authorizer) {
		return common.Address{}, [32]byte{}, NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid authorizer address: %s", c.Authorizer), nil)
	}
	nonce, err := ParseNonce(c.Nonce)
	if err != nil {
		return common.Address{}, [32]byte{}, err
	}
	return common.HexToAddress(c.Authorizer), nonce, nil
}

// ParseNonce decodes a 0x-hex nonce string into its 32-byte form.
func ParseNonce(s string) ([32]byte, error) {
	var nonce [32]byte
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nonce, NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid nonce: %v", err), nil)
	}
	if len(raw) != 32 {
		return nonce, NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid nonce length: %d", len(raw)), nil)
	}
	copy(nonce[:], raw)
	return nonce, nil
}

// ParseSignature splits a 65-byte r||s||v hex signature into its components.
// v may be encoded as 27/28 or as a raw recovery id 0/1.
func ParseSignature(s string) (v uint8, r, sComp [32]byte, err error) {
	raw, decErr := hexutil.Decode(s)
	if decErr != nil {
		err = NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid signature: %v", decErr), nil)
		return
	}
	if len(raw) != 65 {
		err = NewAuthorizationError(ErrCodeInvalidPayload, fmt.Sprintf("invalid signature length: %d", len(raw)), nil)
		return
	}
	copy(r[:], raw[0:32])
	copy(sComp[:], raw[32:64])
	v = raw[64]
	if v < 27 {
		v += 27
	}
	return
}
