package types

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestValidateBuyParams(t *testing.T) {
	assert.NoError(t, ValidateBuyParams(1, 1))
	assert.Error(t, ValidateBuyParams(0, 1))
	assert.Error(t, ValidateBuyParams(1, 0))
}

func TestValidateSellParams(t *testing.T) {
	assert.NoError(t, ValidateSellParams(1))
	assert.Error(t, ValidateSellParams(0))
}

func TestValidateSlippage(t *testing.T) {
	assert.NoError(t, ValidateSlippage(0))
	assert.NoError(t, ValidateSlippage(10_000))
	assert.Error(t, ValidateSlippage(10_001))
}

func TestValidateMetadata(t *testing.T) {
	assert.NoError(t, ValidateMetadata("Test Token", "TEST", "https://example.com/meta.json"))
	assert.NoError(t, ValidateMetadata("T", "T", ""))

	assert.Error(t, ValidateMetadata("", "TEST", ""))
	assert.Error(t, ValidateMetadata(strings.Repeat("a", 33), "TEST", ""))
	assert.Error(t, ValidateMetadata("Test", "", ""))
	assert.Error(t, ValidateMetadata("Test", strings.Repeat("a", 11), ""))
	assert.Error(t, ValidateMetadata("Test", "TEST", strings.Repeat("a", 201)))
}

func TestValidatePublicKey(t *testing.T) {
	assert.Error(t, ValidatePublicKey("authority", solana.PublicKey{}))
	assert.NoError(t, ValidatePublicKey("authority", solana.NewWallet().PublicKey()))

	assert.Error(t, ValidatePublicKeys(map[string]solana.PublicKey{
		"ok":  solana.NewWallet().PublicKey(),
		"bad": {},
	}))
}
