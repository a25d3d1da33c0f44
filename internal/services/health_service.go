package services

import (
	"context"
	"time"

	"github.com/isdelr/machine-monitor-be/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStatsFunc collects host statistics.
type HostStatsFunc func(ctx context.Context) (*models.HostStats, error)

// HealthServiceProvider defines the interface for health reporting.
type HealthServiceProvider interface {
	Health(ctx context.Context) models.Health
}

// HealthService reports process uptime and host load.
type HealthService struct {
	started   time.Time
	hostStats HostStatsFunc
}

// NewHealthService creates a HealthService. A nil stats func uses gopsutil.
func NewHealthService(hostStats HostStatsFunc) *HealthService {
	if hostStats == nil {
		hostStats = GopsutilHostStats
	}
	return &HealthService{started: time.Now(), hostStats: hostStats}
}

// Health returns the current health report. Host stats failures are logged and
// leave the host block out.
func (s *HealthService) Health(ctx context.Context) models.Health {
	h := models.Health{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	stats, err := s.hostStats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not collect host stats")
		return h
	}
	h.Host = stats
	return h
}

// GopsutilHostStats reads memory usage and the 1-minute load average.
func GopsutilHostStats(ctx context.Context) (*models.HostStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return &models.HostStats{
		MemoryUsedPercent: round2(vm.UsedPercent),
		Load1:             round2(avg.Load1),
	}, nil
}
