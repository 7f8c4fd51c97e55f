// Copyright 2026 The Provdir Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// cipherSalt is a fixed application salt for key derivation. The master
// secret itself must be unique per deployment.
var cipherSalt = []byte("provdir.credentials.v1")

// SecretCipher encrypts client secrets at rest. Secrets must be recoverable
// (the registry's Fetch returns them in the clear), so a one-way hash is not
// an option; instead they are sealed with AES-GCM under a key derived from
// the configured master secret.
type SecretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher derives the encryption key from the master secret using
// argon2id and prepares the AEAD.
func NewSecretCipher(masterSecret string) (*SecretCipher, error) {
	if masterSecret == "" {
		return nil, errors.New("credential master secret is required")
	}

	key := argon2.IDKey([]byte(masterSecret), cipherSalt, 1, 64*1024, 4, 32)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AEAD: %w", err)
	}
	return &SecretCipher{aead: aead}, nil
}

// Seal encrypts a secret for storage. The nonce is prepended to the result.
func (c *SecretCipher) Seal(secret string) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, []byte(secret), nil), nil
}

// Open decrypts a stored secret.
func (c *SecretCipher) Open(sealed []byte) (string, error) {
	if len(sealed) < c.aead.NonceSize() {
		return "", errors.New("sealed secret too short")
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	secret, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt secret: %w", err)
	}
	return string(secret), nil
}
