// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package auth valida a credencial de autenticação apresentada pelos
// clientes ao gateway. A credencial configurada é um hash Argon2id no
// formato PHC ou, como fallback, uma string em texto plano.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Credential é uma credencial configurada, pronta para verificação.
type Credential struct {
	// plaintext é usado quando a string configurada não é um PHC válido.
	plaintext string

	// Parâmetros e material do hash Argon2id.
	hashed  bool
	salt    []byte
	hash    []byte
	time    uint32
	memory  uint32
	threads uint8
}

// Parse interpreta a credencial configurada. Se a string for um PHC
// Argon2id válido ($argon2id$v=19$m=...,t=...,p=...$salt$hash), a
// verificação usa o hash; caso contrário a comparação é em texto plano.
func Parse(credential string) (*Credential, error) {
	if credential == "" {
		return nil, fmt.Errorf("auth: credential must not be empty")
	}
	if !strings.HasPrefix(credential, "$argon2id$") {
		return &Credential{plaintext: credential}, nil
	}
	c, err := parsePHC(credential)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid argon2 credential: %w", err)
	}
	return c, nil
}

// IsHashed informa se a credencial é um hash Argon2id.
func (c *Credential) IsHashed() bool {
	return c.hashed
}

// Verify compara a chave apresentada com a credencial, em tempo
// constante nos dois modos.
func (c *Credential) Verify(presented string) bool {
	if c.hashed {
		derived := argon2.IDKey([]byte(presented), c.salt, c.time, c.memory, c.threads, uint32(len(c.hash)))
		return subtle.ConstantTimeCompare(derived, c.hash) == 1
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(c.plaintext)) == 1
}

// parsePHC decompõe um PHC string do Argon2id.
func parsePHC(phc string) (*Credential, error) {
	parts := strings.Split(phc, "$")
	// ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, hash]
	if len(parts) != 6 {
		return nil, fmt.Errorf("expected 6 segments, got %d", len(parts))
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported variant %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported version %d", version)
	}

	c := &Credential{hashed: true}
	for _, param := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			return nil, fmt.Errorf("malformed parameter %q", param)
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing parameter %q: %w", param, err)
		}
		switch key {
		case "m":
			c.memory = uint32(n)
		case "t":
			c.time = uint32(n)
		case "p":
			c.threads = uint8(n)
		default:
			return nil, fmt.Errorf("unknown parameter %q", key)
		}
	}
	if c.memory == 0 || c.time == 0 || c.threads == 0 {
		return nil, fmt.Errorf("missing m/t/p parameters")
	}

	var err error
	if c.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	if c.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("decoding hash: %w", err)
	}
	if len(c.hash) == 0 {
		return nil, fmt.Errorf("empty hash")
	}
	return c, nil
}
