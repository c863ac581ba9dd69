// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package proxy

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

// Translator reescreve pacotes de movimento relativo como teleportes
// absolutos. Movimento de entidade viaja como datagrama não-confiável e
// não-ordenado: um delta relativo depende da posição anterior e não
// sobreviveria a perdas; a forma absoluta torna o last-writer-wins
// correto. Para isso o tradutor mantém a última posição absoluta
// conhecida de cada entidade.
type Translator struct {
	positions map[int32]protocol.EntityPosition
	logger    *slog.Logger

	// warnLimit contém o spam de warnings quando o servidor referencia
	// entidades que nunca vimos nascer.
	warnLimit *rate.Limiter
}

// NewTranslator cria um tradutor com a tabela de posições vazia.
func NewTranslator(logger *slog.Logger) *Translator {
	return &Translator{
		positions: make(map[int32]protocol.EntityPosition),
		logger:    logger,
		warnLimit: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Translate processa um pacote Play de saída do gateway. Retorna o
// pacote a transmitir (o original, ou um TeleportEntity sintético no
// lugar de um movimento relativo) ou nil quando o pacote deve ser
// descartado (movimento relativo de entidade desconhecida).
func (t *Translator) Translate(p *packet.Packet) *packet.Packet {
	switch p.ID() {
	case packet.CBSpawnEntity:
		body := p.Body.(*packet.SpawnEntity)
		t.positions[body.EntityID] = protocol.EntityPosition{
			X: body.X, Y: body.Y, Z: body.Z, Yaw: body.Yaw, Pitch: body.Pitch,
		}
		return p

	case packet.CBSpawnExperienceOrb:
		body := p.Body.(*packet.SpawnExperienceOrb)
		t.positions[body.EntityID] = protocol.EntityPosition{X: body.X, Y: body.Y, Z: body.Z}
		return p

	case packet.CBTeleportEntity:
		body := p.Body.(*packet.TeleportEntity)
		t.positions[body.EntityID] = protocol.EntityPosition{
			X: body.X, Y: body.Y, Z: body.Z, Yaw: body.Yaw, Pitch: body.Pitch,
		}
		return p

	case packet.CBUpdateEntityRotation:
		body := p.Body.(*packet.UpdateEntityRotation)
		if pos, ok := t.positions[body.EntityID]; ok {
			pos.Yaw = body.Yaw
			pos.Pitch = body.Pitch
			t.positions[body.EntityID] = pos
		}
		return p

	case packet.CBUpdateEntityPosition:
		body := p.Body.(*packet.UpdateEntityPosition)
		pos, ok := t.positions[body.EntityID]
		if !ok {
			t.warnUnknown(body.EntityID)
			return nil
		}
		pos = pos.ApplyDelta(body.DeltaX, body.DeltaY, body.DeltaZ)
		t.positions[body.EntityID] = pos
		return t.teleport(body.EntityID, pos, body.OnGround)

	case packet.CBUpdateEntityPositionAndRot:
		body := p.Body.(*packet.UpdateEntityPositionAndRotation)
		pos, ok := t.positions[body.EntityID]
		if !ok {
			t.warnUnknown(body.EntityID)
			return nil
		}
		pos.Yaw = body.Yaw
		pos.Pitch = body.Pitch
		pos = pos.ApplyDelta(body.DeltaX, body.DeltaY, body.DeltaZ)
		t.positions[body.EntityID] = pos
		return t.teleport(body.EntityID, pos, body.OnGround)

	case packet.CBRemoveEntities:
		for _, id := range p.Body.(*packet.RemoveEntities).EntityIDs {
			delete(t.positions, id)
		}
		return p

	case packet.CBRespawn:
		t.positions = make(map[int32]protocol.EntityPosition)
		return p

	default:
		return p
	}
}

func (t *Translator) teleport(entityID int32, pos protocol.EntityPosition, onGround bool) *packet.Packet {
	return packet.Make(packet.SideServer, packet.StatePlay, packet.CBTeleportEntity, &packet.TeleportEntity{
		EntityID: entityID,
		X:        pos.X,
		Y:        pos.Y,
		Z:        pos.Z,
		Yaw:      pos.Yaw,
		Pitch:    pos.Pitch,
		OnGround: onGround,
	}, nil)
}

func (t *Translator) warnUnknown(entityID int32) {
	if t.warnLimit.Allow() {
		t.logger.Warn("dropping relative move for unknown entity", "entity_id", entityID)
	}
}
