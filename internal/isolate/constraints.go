package isolate

import (
	"fmt"
)

type Constraints struct {
	CpuTimeLimInSec      float64
	ExtraCpuTimeLimInSec float64
	WallTimeLimInSec     float64
	MemoryLimitInKB      int
	MaxProcesses         int
	MaxOpenFiles         int
	MaxFileSizeInKB      int
}

func DefaultConstraints() Constraints {
	return Constraints{
		CpuTimeLimInSec:      1.0,
		ExtraCpuTimeLimInSec: 0.5,
		WallTimeLimInSec:     1.0,
		MemoryLimitInKB:      1024000,
		MaxProcesses:         128,
		MaxOpenFiles:         128,
		MaxFileSizeInKB:      65536,
	}
}

// ForTimeLimit returns default constraints with cpu and wall time set to ms.
func ForTimeLimit(ms int) Constraints {
	c := DefaultConstraints()
	c.CpuTimeLimInSec = float64(ms) / 1000
	c.WallTimeLimInSec = float64(ms) / 1000
	return c
}

func (constraints *Constraints) ToArgs() []string {
	return []string{
		constraints.MemLimArg(),
		constraints.CpuTimeLimArg(),
		constraints.ExtraCpuTimeLimArg(),
		constraints.WallTimeLimArg(),
		constraints.MaxProcessesArg(),
		constraints.MaxOpenFilesArg(),
		constraints.MaxFileSizeArg(),
	}
}

func (constraints *Constraints) MemLimArg() string {
	return fmt.Sprintf("--cg-mem=%d", constraints.MemoryLimitInKB)
}

func (constraints *Constraints) CpuTimeLimArg() string {
	return fmt.Sprintf("--time=%.3f", constraints.CpuTimeLimInSec)
}

func (constraints *Constraints) ExtraCpuTimeLimArg() string {
	return fmt.Sprintf("--extra-time=%.3f", constraints.ExtraCpuTimeLimInSec)
}

func (constraints *Constraints) WallTimeLimArg() string {
	return fmt.Sprintf("--wall-time=%.3f", constraints.WallTimeLimInSec)
}

func (constraints *Constraints) MaxProcessesArg() string {
	return fmt.Sprintf("--processes=%d", constraints.MaxProcesses)
}

func (constraints *Constraints) MaxOpenFilesArg() string {
	return fmt.Sprintf("--open-files=%d", constraints.MaxOpenFiles)
}

func (constraints *Constraints) MaxFileSizeArg() string {
	return fmt.Sprintf("--fsize=%d", constraints.MaxFileSizeInKB)
}
