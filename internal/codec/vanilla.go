// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

// BufferLimit limita o tamanho declarado e o tamanho descomprimido de um
// frame, para resistir a bombas de descompressão.
const BufferLimit = 1024 * 1024 // 1 MiB

// VanillaEncoder é a metade de escrita do codec nativo: framing com
// prefixo VarInt, zlib opcional acima do threshold e CFB8 opcional.
// O proxy raramente envia volumes grandes pelo codec nativo, então a
// compressão usa o nível mais rápido.
type VanillaEncoder struct {
	side  packet.Side
	state packet.State

	threshold int // -1 = compressão desabilitada
	encrypter *cfb8
}

// NewVanillaEncoder cria a metade de escrita para pacotes do lado dado.
func NewVanillaEncoder(side packet.Side, state packet.State) *VanillaEncoder {
	return &VanillaEncoder{side: side, state: state, threshold: -1}
}

// EnableCompression habilita zlib acima do threshold. One-shot.
func (c *VanillaEncoder) EnableCompression(threshold int) {
	if c.threshold >= 0 {
		panic("codec: EnableCompression called twice")
	}
	c.threshold = threshold
}

// EnableEncryption habilita AES-128-CFB8 com IV igual à chave. One-shot.
func (c *VanillaEncoder) EnableEncryption(key [16]byte) {
	if c.encrypter != nil {
		panic("codec: EnableEncryption called twice")
	}
	enc, err := newCFB8(key, false)
	if err != nil {
		panic(fmt.Sprintf("codec: aes init: %v", err))
	}
	c.encrypter = enc
}

// SwitchState troca o vocabulário de pacotes preservando o estado de
// compressão e criptografia.
func (c *VanillaEncoder) SwitchState(state packet.State) {
	c.state = state
}

// EncodePacket serializa um pacote no formato do wire TCP.
func (c *VanillaEncoder) EncodePacket(p *packet.Packet) ([]byte, error) {
	plain := protocol.NewEncoder()
	p.Encode(plain)
	plainBytes := plain.Bytes()

	frame := protocol.NewEncoder()
	if c.threshold >= 0 {
		dataLength := int32(0)
		body := plainBytes
		if len(plainBytes) >= c.threshold {
			var compressed bytes.Buffer
			zw, err := zlib.NewWriterLevel(&compressed, zlib.BestSpeed)
			if err != nil {
				return nil, fmt.Errorf("codec: zlib init: %w", err)
			}
			if _, err := zw.Write(plainBytes); err != nil {
				return nil, fmt.Errorf("codec: zlib write: %w", err)
			}
			if err := zw.Close(); err != nil {
				return nil, fmt.Errorf("codec: zlib close: %w", err)
			}
			dataLength = int32(len(plainBytes))
			body = compressed.Bytes()
		}
		frame.WriteVarInt(int32(protocol.VarIntSize(dataLength) + len(body)))
		frame.WriteVarInt(dataLength)
		frame.WriteBytes(body)
	} else {
		frame.WriteVarInt(int32(len(plainBytes)))
		frame.WriteBytes(plainBytes)
	}

	out := frame.Bytes()
	if c.encrypter != nil {
		c.encrypter.XORKeyStream(out)
	}
	return out, nil
}

// VanillaDecoder é a metade de leitura do codec nativo: uma máquina de
// estados de streaming sobre um buffer interno.
type VanillaDecoder struct {
	side  packet.Side
	state packet.State

	buf         []byte
	compression bool
	decrypter   *cfb8
}

// NewVanillaDecoder cria a metade de leitura para pacotes do lado dado.
func NewVanillaDecoder(side packet.Side, state packet.State) *VanillaDecoder {
	return &VanillaDecoder{side: side, state: state}
}

// EnableCompression marca o stream como comprimido. One-shot.
func (c *VanillaDecoder) EnableCompression() {
	if c.compression {
		panic("codec: EnableCompression called twice")
	}
	c.compression = true
}

// EnableEncryption habilita a decifragem CFB8. One-shot.
func (c *VanillaDecoder) EnableEncryption(key [16]byte) {
	if c.decrypter != nil {
		panic("codec: EnableEncryption called twice")
	}
	dec, err := newCFB8(key, true)
	if err != nil {
		panic(fmt.Sprintf("codec: aes init: %v", err))
	}
	c.decrypter = dec
}

// SwitchState troca o vocabulário de pacotes sem perder bytes buffered.
func (c *VanillaDecoder) SwitchState(state packet.State) {
	c.state = state
}

// GiveData decifra (se habilitado) e acumula bytes no buffer interno.
// O slice data é modificado in-place.
func (c *VanillaDecoder) GiveData(data []byte) {
	if c.decrypter != nil {
		c.decrypter.XORKeyStream(data)
	}
	c.buf = append(c.buf, data...)
}

// DecodePacket tenta decodificar o próximo pacote do buffer.
// Retorna (nil, nil) quando ainda não há bytes suficientes; deve ser
// chamado em loop após GiveData até retornar nil. Erros invalidam o stream.
func (c *VanillaDecoder) DecodePacket() (*packet.Packet, error) {
	frame, err := c.DecodeFrame()
	if err != nil || frame == nil {
		return nil, err
	}
	plain, err := c.UnwrapFrame(frame)
	if err != nil {
		return nil, err
	}
	return packet.Decode(c.side, c.state, plain)
}

// DecodeFrame extrai o próximo frame bruto do buffer (apenas o framing
// externo de tamanho). A extração independe do vocabulário de estado E do
// modo de compressão (os dois só são aplicados na decodificação), o que
// permite ao endpoint TCP estacionar um frame extraído através de uma
// troca de estado ou de uma negociação de compressão sem corrompê-lo.
// Retorna (nil, nil) quando faltam bytes.
func (c *VanillaDecoder) DecodeFrame() ([]byte, error) {
	dec := protocol.NewDecoder(c.buf)
	length, err := dec.ReadVarInt()
	if err != nil {
		if err == protocol.ErrEndOfStream {
			return nil, nil
		}
		return nil, fmt.Errorf("codec: reading frame length: %w", err)
	}
	if length < 0 {
		return nil, fmt.Errorf("codec: negative frame length %d", length)
	}
	if int(length) > BufferLimit {
		return nil, fmt.Errorf("codec: frame length %d exceeds limit", length)
	}

	contents, err := dec.ConsumeSlice(int(length))
	if err != nil {
		if err == protocol.ErrEndOfStream {
			return nil, nil
		}
		return nil, err
	}
	totalBytes := protocol.VarIntSize(length) + int(length)

	// Copia: o restante do buffer interno continua vivo e mutável.
	out := make([]byte, len(contents))
	copy(out, contents)
	c.buf = c.buf[totalBytes:]
	return out, nil
}

// UnwrapFrame aplica a camada de compressão (quando habilitada) a um
// frame extraído por DecodeFrame, retornando os bytes planos do pacote.
func (c *VanillaDecoder) UnwrapFrame(frame []byte) ([]byte, error) {
	if !c.compression {
		return frame, nil
	}

	inner := protocol.NewDecoder(frame)
	uncompressedLength, err := inner.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("codec: reading data length: %w", err)
	}
	if uncompressedLength < 0 || int(uncompressedLength) > BufferLimit {
		return nil, fmt.Errorf("codec: data length %d exceeds limit", uncompressedLength)
	}
	if uncompressedLength == 0 {
		return inner.Remaining(), nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(inner.Remaining()))
	if err != nil {
		return nil, fmt.Errorf("codec: zlib init: %w", err)
	}
	var inflated bytes.Buffer
	if _, err := io.Copy(&inflated, io.LimitReader(zr, BufferLimit+1)); err != nil {
		return nil, fmt.Errorf("codec: zlib inflate: %w", err)
	}
	if inflated.Len() > BufferLimit {
		return nil, fmt.Errorf("codec: decompressed length exceeds limit")
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("codec: zlib close: %w", err)
	}
	return inflated.Bytes(), nil
}
