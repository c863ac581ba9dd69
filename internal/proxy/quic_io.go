// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package proxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/quic-go/quic-go"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/transport"
)

// SingleQuicIO é o endpoint QUIC que usa um único stream por direção.
// É o transporte dos estados Handshake, Status, Login e Configuration.
//
// O stream de recepção é aceito preguiçosamente no primeiro Recv: o QUIC
// só anuncia um stream à outra ponta quando há dados (ou FIN) nele, então
// aceitar na construção travaria em streams que nunca carregam nada,
// como o stream do gateway no estado Handshake.
type SingleQuicIO struct {
	conn   quic.Connection
	side   packet.Side
	state  packet.State
	logger *slog.Logger

	send *transport.SendStream
	recv *transport.RecvStream
}

// NewSingleQuicIO abre o stream de envio do estado dado.
func NewSingleQuicIO(ctx context.Context, conn quic.Connection, side packet.Side,
	state packet.State, logger *slog.Logger) (*SingleQuicIO, error) {

	send, err := transport.OpenSendStream(ctx, conn, state.String(), transport.PriorityDefault, side, state, logger)
	if err != nil {
		return nil, err
	}
	return &SingleQuicIO{conn: conn, side: side, state: state, logger: logger, send: send}, nil
}

// NewSingleQuicIOFromHandles monta o endpoint sobre handles já abertos.
// Usado para o stream bidirecional "configuration" da reentrada
// mid-session.
func NewSingleQuicIOFromHandles(conn quic.Connection, side packet.Side, state packet.State,
	send *transport.SendStream, recv *transport.RecvStream, logger *slog.Logger) *SingleQuicIO {

	return &SingleQuicIO{conn: conn, side: side, state: state, logger: logger, send: send, recv: recv}
}

// Send envia o pacote no stream do estado.
func (s *SingleQuicIO) Send(ctx context.Context, p *packet.Packet) error {
	return s.send.Send(ctx, p)
}

// Recv espera o próximo pacote, aceitando o stream de recepção na
// primeira chamada.
func (s *SingleQuicIO) Recv(ctx context.Context) (*packet.Packet, error) {
	if s.recv == nil {
		recv, err := transport.AcceptRecvStream(ctx, s.conn, s.state.String(), s.side.Opposite(), s.state, s.logger)
		if err != nil {
			return nil, err
		}
		s.recv = recv
	}
	p, err := s.recv.Recv(ctx)
	if err == io.EOF {
		return nil, ErrEndOfStream
	}
	return p, err
}

// ConsumeRecvStream aceita e descarta um stream de recepção pendente.
// Usado pelo cliente após encaminhar o Handshake: o stream vazio do
// gateway para esse estado só é anunciado no FIN, e sem consumi-lo ele
// seria confundido com o stream do próximo estado.
func (s *SingleQuicIO) ConsumeRecvStream(ctx context.Context) error {
	if s.recv != nil {
		return nil
	}
	if _, err := s.conn.AcceptUniStream(ctx); err != nil {
		return fmt.Errorf("proxy: consuming stale stream: %w", err)
	}
	return nil
}

// SwitchState fecha o stream do estado atual e abre o do novo estado.
// A outra ponta precisa fazer o mesmo em lock-step, senão os streams
// desalinham.
func (s *SingleQuicIO) SwitchState(ctx context.Context, state packet.State) (*SingleQuicIO, error) {
	s.send.Close()
	return NewSingleQuicIO(ctx, s.conn, s.side, state, s.logger)
}

// Connection expõe a conexão, usada na transição para o estado Play.
func (s *SingleQuicIO) Connection() quic.Connection {
	return s.conn
}

// PlayQuicIO é o endpoint QUIC do estado Play: envio pela política de
// alocação (streams compartilhados, keyed e one-shot, mais sequências de
// datagramas) e recepção mesclando todos os streams aceitos e os
// datagramas em um único canal.
type PlayQuicIO struct {
	conn       quic.Connection
	side       packet.Side
	logger     *slog.Logger
	alloc      *transport.Allocator
	seqs       *transport.Sequences
	translator *Translator

	inbound chan inboundResult
	cancel  context.CancelFunc
}

type inboundResult struct {
	pkt *packet.Packet
	err error
}

// NewPlayQuicIO constrói um endpoint Play novo, com alocador recém-criado.
// translator pode ser nil (no cliente não há traduções a aplicar).
func NewPlayQuicIO(ctx context.Context, conn quic.Connection, side packet.Side,
	translator *Translator, logger *slog.Logger) (*PlayQuicIO, error) {

	alloc, err := transport.NewAllocator(ctx, conn, side, logger)
	if err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	q := &PlayQuicIO{
		conn:       conn,
		side:       side,
		logger:     logger,
		alloc:      alloc,
		seqs:       transport.NewSequences(conn, side, logger),
		translator: translator,
		inbound:    make(chan inboundResult, 16),
		cancel:     cancel,
	}
	go q.acceptLoop(loopCtx)
	go q.datagramLoop(loopCtx)
	return q, nil
}

// acceptLoop aceita streams unidirecionais continuamente; cada um ganha
// um reader que alimenta o canal de entrada.
func (q *PlayQuicIO) acceptLoop(ctx context.Context) {
	for {
		recv, err := transport.AcceptRecvStream(ctx, q.conn, "play", q.side.Opposite(), packet.StatePlay, q.logger)
		if err != nil {
			if ctx.Err() == nil {
				q.deliver(ctx, inboundResult{err: err})
			}
			return
		}
		go q.drainStream(ctx, recv)
	}
}

func (q *PlayQuicIO) drainStream(ctx context.Context, recv *transport.RecvStream) {
	for {
		p, err := recv.Recv(ctx)
		if err == io.EOF {
			return
		}
		if err != nil {
			if ctx.Err() == nil {
				q.deliver(ctx, inboundResult{err: err})
			}
			return
		}
		q.deliver(ctx, inboundResult{pkt: p})
	}
}

// datagramLoop recebe os datagramas sequenciados.
func (q *PlayQuicIO) datagramLoop(ctx context.Context) {
	for {
		p, err := q.seqs.Recv(ctx)
		if err != nil {
			if ctx.Err() == nil {
				q.deliver(ctx, inboundResult{err: err})
			}
			return
		}
		q.deliver(ctx, inboundResult{pkt: p})
	}
}

func (q *PlayQuicIO) deliver(ctx context.Context, res inboundResult) {
	select {
	case q.inbound <- res:
	case <-ctx.Done():
	}
}

// Send apresenta o pacote ao tradutor e o transmite conforme a alocação.
func (q *PlayQuicIO) Send(ctx context.Context, p *packet.Packet) error {
	if q.translator != nil {
		p = q.translator.Translate(p)
		if p == nil {
			return nil
		}
	}

	alloc, err := q.alloc.Allocate(ctx, p)
	if err != nil {
		return err
	}
	if alloc.Sequence != nil {
		return q.seqs.Send(*alloc.Sequence, p)
	}
	err = alloc.Stream.Send(ctx, p)
	if alloc.OneShot {
		alloc.Stream.Close()
	}
	return err
}

// Recv espera o próximo pacote de qualquer stream ou datagrama.
func (q *PlayQuicIO) Recv(ctx context.Context) (*packet.Packet, error) {
	select {
	case res := <-q.inbound:
		return res.pkt, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close para os loops de recepção e libera os streams do alocador.
func (q *PlayQuicIO) Close() {
	q.cancel()
	q.alloc.Close()
}
