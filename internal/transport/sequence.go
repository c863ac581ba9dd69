// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/quic-go/quic-go"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

// SequenceIdleTTL é o tempo de inatividade após o qual o estado de uma
// sequência é descartado para conter memória.
const SequenceIdleTTL = 120 * time.Second

// SequenceKind discrimina as sequências de datagramas.
type SequenceKind uint8

const (
	SeqEntityPosition SequenceKind = iota
	SeqEntityVelocity
)

// SequenceKey identifica uma sequência: pacotes com a mesma chave são
// entregues com semântica last-writer-wins.
type SequenceKey struct {
	Kind     SequenceKind
	EntityID int32
}

func (k SequenceKey) cacheKey() string {
	return strconv.Itoa(int(k.Kind)) + ":" + strconv.Itoa(int(k.EntityID))
}

// datagramHeaderSize: kind (1) + entity id (4, BE) + ordinal (8, BE).
const datagramHeaderSize = 13

// sequence carrega o contador de envio e a marca d'água de recepção.
type sequence struct {
	sendCounter atomic.Uint64
	highWater   atomic.Uint64
}

// nextSendOrdinal devolve o próximo ordinal (monotônico, com wrap).
func (s *sequence) nextSendOrdinal() uint64 {
	return s.sendCounter.Add(1) - 1
}

// receive decide se um datagrama recebido deve ser entregue (true) ou
// descartado como obsoleto (false), atualizando a marca d'água.
// O >= cobre o caso inicial em que o ordinal é 0.
func (s *sequence) receive(ordinal uint64) bool {
	if ordinal < s.highWater.Load() {
		return false
	}
	s.highWater.Store(ordinal)
	return true
}

// Sequences gerencia o envio e a recepção de datagramas sequenciados
// sobre a conexão QUIC. Datagramas são não-confiáveis, não-ordenados e
// sem compressão; a lógica de sequência acrescenta apenas o ordinal.
type Sequences struct {
	conn   quic.Connection
	side   packet.Side
	logger *slog.Logger

	states *gocache.Cache // cacheKey → *sequence
}

// NewSequences cria o transporte de sequências para o lado local.
func NewSequences(conn quic.Connection, side packet.Side, logger *slog.Logger) *Sequences {
	return &Sequences{
		conn:   conn,
		side:   side,
		logger: logger,
		states: gocache.New(SequenceIdleTTL, SequenceIdleTTL/2),
	}
}

// get busca (criando sob demanda) o estado da sequência, renovando o TTL.
func (s *Sequences) get(key SequenceKey) *sequence {
	ck := key.cacheKey()
	if v, ok := s.states.Get(ck); ok {
		seq := v.(*sequence)
		s.states.Set(ck, seq, SequenceIdleTTL)
		return seq
	}
	seq := &sequence{}
	s.states.Set(ck, seq, SequenceIdleTTL)
	return seq
}

// Send serializa (chave, ordinal, pacote) e submete como datagrama QUIC.
// Datagramas grandes demais para o MTU são descartados silenciosamente.
func (s *Sequences) Send(key SequenceKey, p *packet.Packet) error {
	seq := s.get(key)
	ordinal := seq.nextSendOrdinal()

	enc := protocol.NewEncoder()
	var hdr [datagramHeaderSize]byte
	hdr[0] = byte(key.Kind)
	binary.BigEndian.PutUint32(hdr[1:5], uint32(key.EntityID))
	binary.BigEndian.PutUint64(hdr[5:13], ordinal)
	enc.WriteBytes(hdr[:])
	p.Encode(enc)

	err := s.conn.SendDatagram(enc.Bytes())
	var tooLarge *quic.DatagramTooLargeError
	if errors.As(err, &tooLarge) {
		s.logger.Debug("datagram dropped, too large", "packet", p.Name(), "size", enc.Len())
		return nil
	}
	return err
}

// Recv espera o próximo datagrama não-obsoleto, aplicando o descarte por
// marca d'água por sequência.
func (s *Sequences) Recv(ctx context.Context) (*packet.Packet, error) {
	for {
		data, err := s.conn.ReceiveDatagram(ctx)
		if err != nil {
			return nil, err
		}
		if len(data) < datagramHeaderSize {
			return nil, fmt.Errorf("transport: datagram of %d bytes is too short", len(data))
		}

		key := SequenceKey{
			Kind:     SequenceKind(data[0]),
			EntityID: int32(binary.BigEndian.Uint32(data[1:5])),
		}
		if key.Kind != SeqEntityPosition && key.Kind != SeqEntityVelocity {
			return nil, fmt.Errorf("transport: unknown sequence kind %d", data[0])
		}
		ordinal := binary.BigEndian.Uint64(data[5:13])

		seq := s.get(key)
		if !seq.receive(ordinal) {
			continue
		}

		p, err := packet.Decode(s.side.Opposite(), packet.StatePlay, data[datagramHeaderSize:])
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
