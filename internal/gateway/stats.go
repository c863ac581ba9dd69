// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package gateway

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// statsInterval é o intervalo entre linhas de métricas do gateway.
const statsInterval = 15 * time.Second

// startStatsReporter loga periodicamente as sessões ativas e a saúde do
// host. Falhas de coleta não interrompem o reporter.
func (g *Gateway) startStatsReporter(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			args := []any{
				"active_sessions", g.ActiveSessions.Load(),
				"total_sessions", g.TotalSessions.Load(),
			}
			if avg, err := load.Avg(); err == nil {
				args = append(args, "load1", avg.Load1)
			}
			if vm, err := mem.VirtualMemory(); err == nil {
				args = append(args, "mem_used_percent", vm.UsedPercent)
			}
			g.logger.Info("gateway stats", args...)
		}
	}
}
