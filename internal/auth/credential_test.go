// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package auth

import (
	"encoding/base64"
	"fmt"
	"testing"

	"golang.org/x/crypto/argon2"
)

// phcFor gera um PHC Argon2id para a senha dada, com parâmetros baixos
// para o teste ser rápido.
func phcFor(password string) string {
	salt := []byte("0123456789abcdef")
	hash := argon2.IDKey([]byte(password), salt, 1, 8*1024, 1, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 8*1024, 1, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestPlaintextCredential(t *testing.T) {
	c, err := Parse("super-secret")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.IsHashed() {
		t.Error("plain string should not parse as hash")
	}
	if !c.Verify("super-secret") {
		t.Error("matching key should verify")
	}
	if c.Verify("wrong") {
		t.Error("wrong key should not verify")
	}
}

func TestArgon2Credential(t *testing.T) {
	c, err := Parse(phcFor("gateway-password"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !c.IsHashed() {
		t.Error("PHC string should parse as hash")
	}
	if !c.Verify("gateway-password") {
		t.Error("matching password should verify")
	}
	if c.Verify("not-the-password") {
		t.Error("wrong password should not verify")
	}
}

func TestMalformedPHC(t *testing.T) {
	malformed := []string{
		"$argon2id$v=19$m=8192,t=1,p=1$salt",             // segmentos de menos
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",    // versão errada
		"$argon2id$v=19$m=8192,t=1$c2FsdA$aGFzaA",        // sem p
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",       // salt inválido
		"$argon2id$v=19$x=1,m=8192,t=1,p=1$c2FsdA$aGFzaA", // parâmetro desconhecido
	}
	for _, phc := range malformed {
		if _, err := Parse(phc); err == nil {
			t.Errorf("expected error for %q", phc)
		}
	}
}

func TestEmptyCredential(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Error("empty credential should be rejected")
	}
}
