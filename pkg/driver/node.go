package driver

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	log "cellrun/logger"
)

// NodeInfo describes the management host, not the hypervisor: Jailhouse
// partitions the machine statically and exposes no host topology of its own,
// so these values come straight from the OS.
type NodeInfo struct {
	Model     string
	MemoryKiB uint64
	CPUs      int
	MHz       int
	Nodes     int
	Sockets   int
	Cores     int
	Threads   int
}

// GetNodeInfo fills NodeInfo from the local host. Partial failures degrade
// to zero values rather than failing the call; GUI consumers only need a
// best-effort picture.
func GetNodeInfo(ctx context.Context) (NodeInfo, error) {
	info := NodeInfo{Nodes: 1, Sockets: 1}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryKiB = vm.Total / 1024
	} else {
		log.Debugf("node memory query failed: %v", err)
	}

	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return info, err
	}
	info.CPUs = logical

	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil || physical == 0 {
		physical = logical
	}
	info.Cores = physical
	if physical > 0 {
		info.Threads = logical / physical
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.MHz = int(cpus[0].Mhz)
	}
	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Model = h.KernelArch
	}

	return info, nil
}
