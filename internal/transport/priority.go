// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package transport fornece os handles tipados de envio e recepção sobre
// streams QUIC, o transporte de datagramas sequenciados e o alocador de
// streams do estado Play.
package transport

// Priority é a urgência de envio atribuída a um stream na abertura.
// Maior = mais urgente. O quic-go não expõe prioridade por stream, então
// o valor viaja como metadado do handle, exposto por SendStream.Priority()
// e não registrado nos logs; a escala é
// mantida para o dia em que o scheduler a aceitar.
type Priority int32

const (
	PriorityDefault Priority = 0
	PriorityMisc    Priority = 5
	PriorityChat    Priority = 6
	// PriorityGameUpdates cobre os streams por-entidade e por-chunk.
	PriorityGameUpdates Priority = 7
	// PriorityKeepalive é a mais alta: keepalives precisam vencer o volume
	// de chunks para evitar desconexão por idle-timeout em links congestionados.
	PriorityKeepalive Priority = 10
)
