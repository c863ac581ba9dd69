// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package gateway implementa o servidor gateway: aceita conexões QUIC
// dos tradutores locais e as converte em TCP até o servidor de destino.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/nishisan-dev/n-quicproxy/internal/auth"
	"github.com/nishisan-dev/n-quicproxy/internal/config"
	"github.com/nishisan-dev/n-quicproxy/internal/control"
	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/pki"
	"github.com/nishisan-dev/n-quicproxy/internal/proxy"
	"github.com/nishisan-dev/n-quicproxy/internal/transport"
)

// configurationTimeout limita cada passo de configuração de uma sessão.
const configurationTimeout = 30 * time.Second

// Gateway mantém o estado compartilhado entre as sessões.
type Gateway struct {
	cfg        *config.GatewayConfig
	logger     *slog.Logger
	credential *auth.Credential

	// Métricas observáveis pelo stats reporter.
	ActiveSessions atomic.Int32
	TotalSessions  atomic.Int64
}

// Run inicia o gateway e bloqueia até o context ser cancelado.
// Falhas de sessões individuais são logadas e nunca derrubam o accept loop.
func Run(ctx context.Context, cfg *config.GatewayConfig, logger *slog.Logger) error {
	tlsCfg, err := gatewayTLS(cfg)
	if err != nil {
		return err
	}

	listener, err := quic.ListenAddr(cfg.Gateway.Listen, tlsCfg, transport.QuicConfig())
	if err != nil {
		return fmt.Errorf("gateway: listening on %s: %w", cfg.Gateway.Listen, err)
	}
	return RunWithListener(ctx, listener, cfg, logger)
}

// RunWithListener inicia o gateway sobre um listener já existente
// (também usado pelos testes). A credencial vem da configuração.
func RunWithListener(ctx context.Context, listener *quic.Listener, cfg *config.GatewayConfig, logger *slog.Logger) error {
	credential, err := auth.Parse(cfg.Auth.Credential)
	if err != nil {
		return err
	}
	if !credential.IsHashed() {
		logger.Warn("auth credential is plaintext; prefer an argon2id hash to keep the " +
			"secret out of memory comparisons and config files")
	}
	defer listener.Close()

	logger.Info("gateway listening", "address", listener.Addr().String())

	g := &Gateway{cfg: cfg, logger: logger, credential: credential}
	go g.startStatsReporter(ctx)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down gateway")
		listener.Close()
	}()

	consecutiveErrors := 0
	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				logger.Info("gateway shutdown complete")
				return nil
			default:
				consecutiveErrors++
				logger.Error("accepting connection", "error", err, "consecutive_errors", consecutiveErrors)
				if consecutiveErrors > 5 {
					delay := time.Duration(consecutiveErrors) * 100 * time.Millisecond
					if delay > 5*time.Second {
						delay = 5 * time.Second
					}
					time.Sleep(delay)
				}
				continue
			}
		}

		consecutiveErrors = 0
		go g.handleConnection(ctx, conn)
	}
}

// gatewayTLS resolve a identidade TLS: par configurado ou self-signed.
func gatewayTLS(cfg *config.GatewayConfig) (*tls.Config, error) {
	if cfg.TLS.Cert != "" {
		return pki.NewGatewayTLSConfig(cfg.TLS.Cert, cfg.TLS.Key)
	}
	return pki.NewSelfSignedTLSConfig([]string{"localhost"})
}

// handleConnection dirige uma sessão do accept até o término.
func (g *Gateway) handleConnection(ctx context.Context, conn quic.Connection) {
	logger := g.logger.With("remote", conn.RemoteAddr().String())
	logger.Info("accepted connection")

	g.ActiveSessions.Add(1)
	g.TotalSessions.Add(1)
	defer g.ActiveSessions.Add(-1)

	if err := g.driveConnection(ctx, conn, logger); err != nil && ctx.Err() == nil {
		logger.Info("connection lost", "error", err)
	} else {
		logger.Info("connection finished")
	}
	conn.CloseWithError(0, "session ended")
}

// session agrupa o que uma sessão em andamento precisa.
type session struct {
	gateway *Gateway
	logger  *slog.Logger
	conn    quic.Connection
	ctrl    *control.GatewaySide

	// server é o endpoint TCP para o destino; client o endpoint QUIC.
	server *proxy.VanillaIO
}

// driveConnection valida a credencial, conecta ao destino e roda a
// máquina de estados da sessão.
func (g *Gateway) driveConnection(ctx context.Context, conn quic.Connection, logger *slog.Logger) error {
	ctrl, err := control.AcceptGatewaySide(ctx, conn)
	if err != nil {
		return err
	}

	var connectTo *control.ConnectTo
	if err := await(ctx, configurationTimeout, func() error {
		var err error
		connectTo, err = ctrl.WaitForConnectTo()
		return err
	}); err != nil {
		return fmt.Errorf("gateway: waiting for connect-to: %w", err)
	}

	if !g.credential.Verify(connectTo.AuthKey) {
		return errors.New("gateway: client failed to present correct authentication key")
	}

	tcpConn, err := net.DialTimeout("tcp", connectTo.Destination, configurationTimeout)
	if err != nil {
		return fmt.Errorf("gateway: connecting to destination %s: %w", connectTo.Destination, err)
	}
	defer tcpConn.Close()
	logger.Info("connected to destination", "destination", connectTo.Destination)

	if err := ctrl.AckConnectTo(); err != nil {
		return err
	}

	s := &session{
		gateway: g,
		logger:  logger,
		conn:    conn,
		ctrl:    ctrl,
		// No gateway enviamos pacotes do lado cliente ao destino.
		server: proxy.NewVanillaIO(tcpConn, packet.SideClient, packet.StateHandshake),
	}
	defer s.server.Close()
	return s.drive(ctx)
}

// drive executa Handshake → Status | Login → Configuration → Play,
// com a reentrada Play → Configuration mid-session.
func (s *session) drive(ctx context.Context) error {
	client, err := proxy.NewSingleQuicIO(ctx, s.conn, packet.SideServer, packet.StateHandshake, s.logger)
	if err != nil {
		return err
	}

	var hs *packet.Packet
	if err := await(ctx, configurationTimeout, func() error {
		var err error
		hs, err = client.Recv(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("gateway: waiting for handshake: %w", err)
	}
	body, ok := hs.Body.(*packet.Handshake)
	if !ok {
		return fmt.Errorf("gateway: first packet is %s, expected Handshake", hs.Name())
	}
	// Encaminha o Handshake original: o destino precisa dele para avançar
	// o próprio estado.
	if err := s.server.Send(ctx, hs); err != nil {
		return err
	}

	switch body.NextState {
	case packet.NextStateStatus:
		s.logger.Debug("transition to status")
		s.server.SwitchState(packet.StateStatus)
		client, err = client.SwitchState(ctx, packet.StateStatus)
		if err != nil {
			return err
		}
		// Status é terminal: proxia até a desconexão.
		err = proxy.New(client, s.server, s.logger).Run(ctx, passthrough, passthrough)
		if errors.Is(err, proxy.ErrEndOfStream) {
			return nil
		}
		return err

	case packet.NextStateLogin:
		s.logger.Debug("transition to login")
		s.server.SwitchState(packet.StateLogin)
		client, err = client.SwitchState(ctx, packet.StateLogin)
		if err != nil {
			return err
		}
		return s.driveLogin(ctx, client)

	default:
		return fmt.Errorf("gateway: invalid next state %d", body.NextState)
	}
}

// driveLogin proxia o Login observando SetCompression (servidor),
// EncryptionResponse e LoginAcknowledged (cliente).
func (s *session) driveLogin(ctx context.Context, client *proxy.SingleQuicIO) error {
	p := proxy.New(client, s.server, s.logger)

	// Ações pendentes acumuladas sob o mutex: as duas direções podem
	// quebrar no mesmo instante e nenhum efeito pode se perder.
	var (
		mu                sync.Mutex
		pendingEncryption bool
		pendingThreshold  *int32
		finished          bool
	)

	for {
		err := p.Run(ctx,
			func(pk *packet.Packet) proxy.Verdict {
				switch pk.ID() {
				case packet.SBLoginAcknowledged:
					mu.Lock()
					finished = true
					mu.Unlock()
					return proxy.Break
				case packet.SBEncryptionResponse:
					mu.Lock()
					pendingEncryption = true
					mu.Unlock()
					return proxy.Break
				default:
					return proxy.Continue
				}
			},
			func(pk *packet.Packet) proxy.Verdict {
				if pk.ID() == packet.CBSetCompression {
					mu.Lock()
					t := pk.Body.(*packet.SetCompression).Threshold
					pendingThreshold = &t
					mu.Unlock()
					return proxy.Break
				}
				return proxy.Continue
			},
		)
		if err != nil {
			return err
		}

		mu.Lock()
		threshold := pendingThreshold
		encryption := pendingEncryption
		done := finished
		pendingThreshold = nil
		pendingEncryption = false
		mu.Unlock()

		if threshold != nil && *threshold >= 0 {
			s.server.EnableCompression(int(*threshold))
			s.logger.Debug("compression enabled", "threshold", *threshold)
		}
		if encryption {
			var msg *control.EnableTerminalEncryption
			if err := await(ctx, configurationTimeout, func() error {
				var err error
				msg, err = s.ctrl.WaitForTerminalEncryption()
				return err
			}); err != nil {
				return fmt.Errorf("gateway: waiting for encryption key: %w", err)
			}
			s.server.EnableEncryption(msg.Key)
			if err := s.ctrl.AckTerminalEncryption(); err != nil {
				return err
			}
			s.logger.Debug("terminal encryption enabled")
		}
		if done {
			return s.driveConfiguration(ctx, client)
		}
		if threshold == nil && !encryption {
			return errors.New("gateway: login loop stopped without status")
		}
	}
}

// driveConfiguration roda a Configuration inicial e entra no Play.
func (s *session) driveConfiguration(ctx context.Context, client *proxy.SingleQuicIO) error {
	s.logger.Debug("transition to configuration")
	s.server.SwitchState(packet.StateConfiguration)
	client, err := client.SwitchState(ctx, packet.StateConfiguration)
	if err != nil {
		return err
	}
	if err := s.runConfiguration(ctx, client); err != nil {
		return err
	}
	return s.drivePlay(ctx)
}

// runConfiguration proxia até o FinishConfiguration do cliente.
func (s *session) runConfiguration(ctx context.Context, client proxy.Endpoint) error {
	return proxy.New(client, s.server, s.logger).Run(ctx,
		func(pk *packet.Packet) proxy.Verdict {
			if pk.ID() == packet.SBFinishConfiguration {
				return proxy.Break
			}
			return proxy.Continue
		},
		passthrough,
	)
}

// drivePlay roda o Play; em AcknowledgeConfiguration confirma a transição
// no control stream, abre o stream "configuration" e reentra.
func (s *session) drivePlay(ctx context.Context) error {
	for {
		s.logger.Debug("transition to play")
		s.server.SwitchState(packet.StatePlay)
		play, err := proxy.NewPlayQuicIO(ctx, s.conn, packet.SideServer,
			proxy.NewTranslator(s.logger), s.logger)
		if err != nil {
			return err
		}

		reenter := false
		err = proxy.New(play, s.server, s.logger).Run(ctx,
			func(pk *packet.Packet) proxy.Verdict {
				if pk.ID() == packet.SBAcknowledgeConfiguration {
					reenter = true
					return proxy.Break
				}
				return proxy.Continue
			},
			passthrough,
		)
		play.Close()
		if err != nil {
			return err
		}
		if !reenter {
			return nil
		}

		s.logger.Debug("re-entering configuration")
		if err := s.ctrl.AckTransitionPlayToConfig(); err != nil {
			return err
		}
		send, recv, err := transport.OpenBidi(ctx, s.conn, "configuration",
			packet.SideServer, packet.StateConfiguration, s.logger)
		if err != nil {
			return err
		}
		cfg := proxy.NewSingleQuicIOFromHandles(s.conn, packet.SideServer, packet.StateConfiguration, send, recv, s.logger)
		s.server.SwitchState(packet.StateConfiguration)
		if err := s.runConfiguration(ctx, cfg); err != nil {
			return err
		}
	}
}

func passthrough(*packet.Packet) proxy.Verdict {
	return proxy.Continue
}

// await executa op com um limite de tempo.
func await(ctx context.Context, d time.Duration, op func() error) error {
	done := make(chan error, 1)
	go func() { done <- op() }()
	select {
	case err := <-done:
		return err
	case <-time.After(d):
		return fmt.Errorf("timed out after %s", d)
	case <-ctx.Done():
		return ctx.Err()
	}
}
