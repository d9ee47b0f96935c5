package service

import (
	"time"

	"github.com/acquisitions/api/security"
	"github.com/acquisitions/api/web/entity"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// ServerService reports process health for the /health endpoint.
type ServerService struct {
	startTime time.Time
	protector *security.Protector
}

func NewServerService(protector *security.Protector) *ServerService {
	return &ServerService{startTime: time.Now(), protector: protector}
}

// Health snapshots uptime, system load and admission counters. System stats
// are best effort; failures leave the fields at zero.
func (s *ServerService) Health() entity.Health {
	health := entity.Health{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.startTime).Seconds(),
		Admission: s.protector.Stats(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		health.CPU = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		health.MemUsed = vm.Used
		health.MemTotal = vm.Total
	}
	return health
}
