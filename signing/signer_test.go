package signing

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaslesspay/fiattoken/eip712"
)

func testDomain() eip712.Domain {
	return eip712.Domain{
		Name:              "USD Token",
		Version:           "1",
		ChainID:           big.NewInt(1),
		VerifyingContract: common.HexToAddress("0x0b90C9B5d2ba23A4BE8eA16893f1AF0e0A8Dc83c"),
	}
}

func TestNewSignerFromPrivateKey(t *testing.T) {
	// Address for the private key 0x...01 is a fixed, well-known vector.
	const keyOne = "0x0000000000000000000000000000000000000000000000000000000000000001"

	signer, err := NewSignerFromPrivateKey(keyOne)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"), signer.Address())

	// The 0x prefix is optional.
	bare, err := NewSignerFromPrivateKey(keyOne[2:])
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), bare.Address())

	_, err = NewSignerFromPrivateKey("0xzz")
	assert.Error(t, err)
}

func TestSignAuthorizations(t *testing.T) {
	signer, err := GenerateSigner()
	require.NoError(t, err)

	domain := testDomain()
	to := common.HexToAddress("0x9876543210987654321098765432109876543210")
	value := big.NewInt(1_000_000)
	validAfter := big.NewInt(0)
	validBefore := big.NewInt(9_999_999_999)
	nonce := [32]byte{7}

	t.Run("Transfer signature recovers to the signer", func(t *testing.T) {
		v, r, s, err := signer.SignTransferAuthorization(domain, to, value, validAfter, validBefore, nonce)
		require.NoError(t, err)

		digest := eip712.TransferDigest(domain.Separator(), signer.Address(), to, value, validAfter, validBefore, nonce)
		recovered, err := eip712.RecoverSigner(digest, v, r, s)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), recovered)
	})

	t.Run("Receive signature recovers to the signer", func(t *testing.T) {
		v, r, s, err := signer.SignReceiveAuthorization(domain, to, value, validAfter, validBefore, nonce)
		require.NoError(t, err)

		digest := eip712.ReceiveDigest(domain.Separator(), signer.Address(), to, value, validAfter, validBefore, nonce)
		recovered, err := eip712.RecoverSigner(digest, v, r, s)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), recovered)
	})

	t.Run("Cancel signature recovers to the signer", func(t *testing.T) {
		v, r, s, err := signer.SignCancelAuthorization(domain, nonce)
		require.NoError(t, err)

		digest := eip712.CancelDigest(domain.Separator(), signer.Address(), nonce)
		recovered, err := eip712.RecoverSigner(digest, v, r, s)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), recovered)
	})

	t.Run("v is delivered in Ethereum form", func(t *testing.T) {
		v, _, _, err := signer.SignDigest(eip712.CancelDigest(domain.Separator(), signer.Address(), nonce))
		require.NoError(t, err)
		assert.Contains(t, []uint8{27, 28}, v)
	})
}

func TestRandomNonce(t *testing.T) {
	a, err := RandomNonce()
	require.NoError(t, err)
	b, err := RandomNonce()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
