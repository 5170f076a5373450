package procstat

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Sample — снимок потребления ресурсов процессом
type Sample struct {
	Taken      time.Time
	RSSMB      float64 // Резидентная память процесса
	HeapMB     float64 // Живая куча Go
	CPUPercent float64
}

// Take снимает показатели текущего процесса
func Take() (Sample, error) {
	sample := Sample{Taken: time.Now()}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	sample.HeapMB = float64(m.HeapAlloc) / 1024 / 1024

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return sample, fmt.Errorf("не удалось открыть процесс: %w", err)
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return sample, fmt.Errorf("не удалось получить память процесса: %w", err)
	}
	sample.RSSMB = float64(mem.RSS) / 1024 / 1024

	cpu, err := proc.CPUPercent()
	if err != nil {
		return sample, fmt.Errorf("не удалось получить загрузку CPU: %w", err)
	}
	sample.CPUPercent = cpu

	return sample, nil
}

// HeapDelta возвращает прирост кучи между двумя снимками
func HeapDelta(before, after Sample) float64 {
	return after.HeapMB - before.HeapMB
}

// String форматирует снимок для логов
func (s Sample) String() string {
	return fmt.Sprintf("RSS=%.1fMB heap=%.1fMB cpu=%.1f%%", s.RSSMB, s.HeapMB, s.CPUPercent)
}
