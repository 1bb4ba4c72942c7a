// Package wallet resolves caller identities for the CLI. The engine only
// needs an authenticated public key; signing stays available for hosts that
// front the engine with a transaction layer.
package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Identity is an authenticated caller.
type Identity interface {
	PublicKey() solana.PublicKey
}

// Local wraps a local private key.
type Local struct {
	key solana.PrivateKey
}

// NewLocalFromKeygen loads a solana-keygen JSON file.
func NewLocalFromKeygen(path string) (Local, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return Local{}, fmt.Errorf("load keypair: %w", err)
	}
	return Local{key: key}, nil
}

// NewLocalFromBase58 constructs a local identity from a base58-encoded key.
func NewLocalFromBase58(privateKey string) (Local, error) {
	key, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return Local{}, fmt.Errorf("decode base58 key: %w", err)
	}
	return Local{key: key}, nil
}

// PublicKey returns the associated public key.
func (l Local) PublicKey() solana.PublicKey {
	return l.key.PublicKey()
}

// Sign signs the provided message bytes.
func (l Local) Sign(message []byte) (solana.Signature, error) {
	sig, err := l.key.Sign(message)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign message: %w", err)
	}
	return sig, nil
}

// Static is an identity known only by its public key (no signing), for
// read-only commands and tests.
type Static struct {
	pub solana.PublicKey
}

// NewStatic wraps a bare public key as an identity.
func NewStatic(pub solana.PublicKey) Static {
	return Static{pub: pub}
}

// PublicKey returns the wrapped key.
func (s Static) PublicKey() solana.PublicKey {
	return s.pub
}
