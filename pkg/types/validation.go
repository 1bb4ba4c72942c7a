package types

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/curve-launchpad/pkg/constants"
)

// ValidateBuyParams validates common buy parameters.
func ValidateBuyParams(amount, maxCost uint64) error {
	if amount == 0 {
		return NewValidationError("amount", "must be greater than 0")
	}
	if maxCost == 0 {
		return NewValidationError("maxCost", "must be greater than 0")
	}
	return nil
}

// ValidateSellParams validates common sell parameters.
func ValidateSellParams(amount uint64) error {
	if amount == 0 {
		return NewValidationError("amount", "must be greater than 0")
	}
	return nil
}

// ValidateSlippage validates slippage basis points.
func ValidateSlippage(slippageBps uint64) error {
	if slippageBps > 10000 {
		return NewValidationError("slippageBps", "must be <= 10000 (100%)")
	}
	return nil
}

// ValidateMetadata validates token display metadata supplied at creation.
func ValidateMetadata(name, symbol, uri string) error {
	if name == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if len(name) > constants.MaxNameLen {
		return NewValidationError("name", "must be at most 32 bytes")
	}
	if symbol == "" {
		return NewValidationError("symbol", "cannot be empty")
	}
	if len(symbol) > constants.MaxSymbolLen {
		return NewValidationError("symbol", "must be at most 10 bytes")
	}
	if len(uri) > constants.MaxURILen {
		return NewValidationError("uri", "must be at most 200 bytes")
	}
	return nil
}

// ValidatePublicKey validates a public key is not zero.
func ValidatePublicKey(name string, key solana.PublicKey) error {
	if key.IsZero() {
		return NewValidationError(name, "cannot be zero")
	}
	return nil
}

// ValidatePublicKeys validates multiple public keys.
func ValidatePublicKeys(keys map[string]solana.PublicKey) error {
	for name, key := range keys {
		if err := ValidatePublicKey(name, key); err != nil {
			return err
		}
	}
	return nil
}
