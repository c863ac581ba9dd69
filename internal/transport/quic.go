// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package transport

import (
	"time"

	"github.com/quic-go/quic-go"
)

// QuicConfig retorna os parâmetros de transporte de uma conexão do proxy.
// O limite alto de streams unidirecionais acomoda os streams one-shot de
// keepalive; datagramas carregam o movimento de entidades.
func QuicConfig() *quic.Config {
	return &quic.Config{
		MaxIncomingUniStreams: 16384,
		MaxIdleTimeout:        30 * time.Second,
		EnableDatagrams:       true,
	}
}
