// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package proxy implementa o loop de encaminhamento bidirecional, os
// endpoints de pacote (TCP nativo e QUIC) e o tradutor de pacotes de
// movimento.
package proxy

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
)

// Endpoint é uma ponta capaz de enviar e receber pacotes do protocolo.
type Endpoint interface {
	Send(ctx context.Context, p *packet.Packet) error
	Recv(ctx context.Context) (*packet.Packet, error)
}

// Verdict é a decisão de um interceptor sobre o loop.
type Verdict int

const (
	// Continue mantém o loop rodando.
	Continue Verdict = iota
	// Break encerra o loop após encaminhar o pacote interceptado.
	Break
)

// Interceptor examina um pacote recebido antes do encaminhamento.
// Os interceptors rodam inline e veem os pacotes na ordem de chegada da
// sua direção; as duas direções se intercalam de forma não-determinística.
// O pacote inspecionado é sempre encaminhado para a ponta oposta.
type Interceptor func(p *packet.Packet) Verdict

// errBreak sinaliza parada limpa pedida por um interceptor.
var errBreak = errors.New("proxy: interceptor break")

// forwardQueueDepth limita os encaminhamentos pendentes por direção.
const forwardQueueDepth = 4

// Proxy acopla um endpoint do lado do cliente a um do lado do servidor.
type Proxy struct {
	client Endpoint
	server Endpoint
	logger *slog.Logger
}

// New cria um proxy entre os dois endpoints.
func New(client, server Endpoint, logger *slog.Logger) *Proxy {
	return &Proxy{client: client, server: server, logger: logger}
}

// Run roda os dois sentidos concorrentemente até um interceptor pedir
// Break ou um erro de I/O encerrar a sessão. O encaminhamento acontece em
// uma task independente por direção, com fila limitada, para que o loop
// de recepção não bloqueie em backpressure da ponta oposta; no Break as
// filas são drenadas até o fim antes de retornar.
//
// onClientPacket vê os pacotes vindos do cliente; onServerPacket os
// vindos do servidor. Retorna nil quando parado por Break.
func (p *Proxy) Run(ctx context.Context, onClientPacket, onServerPacket Interceptor) error {
	g, gctx := errgroup.WithContext(ctx)

	toServer := make(chan *packet.Packet, forwardQueueDepth)
	toClient := make(chan *packet.Packet, forwardQueueDepth)

	// Forwarders: usam o ctx externo para que um Break (que cancela gctx)
	// não interrompa a drenagem dos pacotes já aceitos.
	g.Go(func() error {
		for pkt := range toServer {
			if err := p.server.Send(ctx, pkt); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for pkt := range toClient {
			if err := p.client.Send(ctx, pkt); err != nil {
				return err
			}
		}
		return nil
	})

	pump := func(src Endpoint, intercept Interceptor, out chan<- *packet.Packet) func() error {
		return func() error {
			defer close(out)
			for {
				pkt, err := src.Recv(gctx)
				if err != nil {
					return err
				}
				verdict := intercept(pkt)
				select {
				case out <- pkt:
				case <-gctx.Done():
					return gctx.Err()
				}
				if verdict == Break {
					return errBreak
				}
			}
		}
	}
	g.Go(pump(p.client, onClientPacket, toServer))
	g.Go(pump(p.server, onServerPacket, toClient))

	err := g.Wait()
	switch {
	case errors.Is(err, errBreak):
		return nil
	case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		// A outra direção foi cancelada pelo Break.
		return nil
	default:
		return err
	}
}
