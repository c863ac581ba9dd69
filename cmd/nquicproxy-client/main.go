// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// nquicproxy-client roda perto do cliente do jogo: aceita uma conexão
// TCP local e a transporta em QUIC até o gateway. A porta TCP escolhida
// é impressa em stdout para o programa hospedeiro.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nishisan-dev/n-quicproxy/internal/client"
	"github.com/nishisan-dev/n-quicproxy/internal/config"
	"github.com/nishisan-dev/n-quicproxy/internal/logging"
)

func main() {
	configPath := flag.String("config", "client.yaml", "caminho do arquivo de configuração")
	flag.Parse()

	cfg, err := config.LoadClientConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := client.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("client failed to open", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	fmt.Println(c.BoundPort())

	select {
	case <-ctx.Done():
	case <-c.Done():
	}
}
