// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

// Formato de frame do codec QUIC:
//  1. VarInt - tamanho do restante do frame, em bytes
//  2. 1 byte de flags: 0x01 = comprimido
//  3. Bytes do pacote, comprimidos com zstd se a flag estiver setada.
//
// Comparado ao codec nativo:
//   - sem criptografia: o QUIC cuida disso;
//   - sem estado de compressão ligado/desligado: pacotes grandes são
//     sempre comprimidos;
//   - uma instância de codec por stream, em vez de uma compartilhada.

// flagCompressed marca o payload como comprimido com zstd.
const flagCompressed byte = 0x01

// quicCompressionThreshold é o tamanho a partir do qual o payload é
// comprimido. Fixo: não há negociação como no codec nativo.
const quicCompressionThreshold = 128

// Contextos zstd compartilhados pelo processo: EncodeAll/DecodeAll são
// seguros para uso concorrente e reutilizam os dicionários internos.
// Nível alto para reduzir banda na conexão QUIC; checksum desabilitado
// para reduzir overhead por frame.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(12)),
		zstd.WithEncoderCRC(false),
	)
	if err != nil {
		panic(fmt.Sprintf("codec: zstd encoder init: %v", err))
	}
	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(BufferLimit),
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		panic(fmt.Sprintf("codec: zstd decoder init: %v", err))
	}
}

// Quic é o codec usado em cada stream QUIC. A interface é a mesma do
// codec nativo: EncodePacket para a ponta de envio, GiveData/DecodePacket
// para a ponta de recepção.
type Quic struct {
	side  packet.Side
	state packet.State

	buf []byte
}

// NewQuic cria um codec para pacotes do lado dado no estado dado.
func NewQuic(side packet.Side, state packet.State) *Quic {
	return &Quic{side: side, state: state}
}

// SwitchState troca o vocabulário de pacotes preservando o buffer interno.
func (c *Quic) SwitchState(state packet.State) {
	c.state = state
}

// EncodePacket serializa um pacote no formato de frame QUIC.
func (c *Quic) EncodePacket(p *packet.Packet) ([]byte, error) {
	plain := protocol.NewEncoder()
	p.Encode(plain)
	plainBytes := plain.Bytes()

	var flags byte
	encoded := plainBytes
	if len(plainBytes) >= quicCompressionThreshold {
		flags |= flagCompressed
		encoded = zstdEncoder.EncodeAll(plainBytes, nil)
	}

	frame := protocol.NewEncoder()
	frame.WriteVarInt(int32(len(encoded) + 1))
	frame.WriteU8(flags)
	frame.WriteBytes(encoded)
	return frame.Bytes(), nil
}

// GiveData acumula bytes recebidos no buffer interno.
func (c *Quic) GiveData(data []byte) {
	c.buf = append(c.buf, data...)
}

// DecodePacket tenta decodificar o próximo pacote do buffer.
// Retorna (nil, nil) quando ainda não há bytes suficientes.
func (c *Quic) DecodePacket() (*packet.Packet, error) {
	dec := protocol.NewDecoder(c.buf)
	length, err := dec.ReadVarInt()
	if err != nil {
		if err == protocol.ErrEndOfStream {
			return nil, nil
		}
		return nil, fmt.Errorf("codec: reading frame length: %w", err)
	}
	if length < 1 {
		return nil, fmt.Errorf("codec: invalid frame length %d", length)
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

	flags := contents[0]
	payload := contents[1:]
	if flags&^flagCompressed != 0 {
		return nil, fmt.Errorf("codec: invalid flags 0x%02x", flags)
	}

	plain := payload
	if flags&flagCompressed != 0 {
		plain, err = zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("codec: zstd decompress: %w", err)
		}
		if len(plain) > BufferLimit {
			return nil, fmt.Errorf("codec: decompressed length exceeds limit")
		}
	}

	p, err := packet.Decode(c.side, c.state, plain)
	if err != nil {
		return nil, err
	}
	c.buf = c.buf[totalBytes:]
	return p, nil
}
