// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package codec implementa os dois codecs de framing do proxy: o codec
// nativo do protocolo 765 (zlib + AES-128-CFB8) usado no lado TCP e o
// codec QUIC (zstd por mensagem) usado por stream.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
)

// cfb8 implementa AES-128 em modo CFB-8, exigido pelo protocolo nativo.
// A biblioteca padrão só oferece CFB com shift de bloco inteiro, então o
// modo de 8 bits é implementado aqui. O IV inicial é igual à chave,
// conforme o protocolo.
type cfb8 struct {
	block   cipher.Block
	iv      [aes.BlockSize]byte
	scratch [aes.BlockSize]byte
	decrypt bool
}

func newCFB8(key [16]byte, decrypt bool) (*cfb8, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	c := &cfb8{block: block, decrypt: decrypt}
	copy(c.iv[:], key[:])
	return c, nil
}

// XORKeyStream processa os bytes in-place, um byte por vez.
func (c *cfb8) XORKeyStream(data []byte) {
	for i := range data {
		c.block.Encrypt(c.scratch[:], c.iv[:])
		in := data[i]
		out := in ^ c.scratch[0]
		data[i] = out

		// O registrador de feedback desloca um byte: entra o byte
		// cifrado (o de entrada ao decifrar, o de saída ao cifrar).
		feedback := out
		if c.decrypt {
			feedback = in
		}
		copy(c.iv[:], c.iv[1:])
		c.iv[aes.BlockSize-1] = feedback
	}
}
