package monitoring

import (
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats is a point-in-time snapshot of host and store health,
// served by the status endpoint.
type SystemStats struct {
	CPUPercent    float64   `json:"cpuPercent"`
	MemPercent    float64   `json:"memPercent"`
	MemUsedMB     uint64    `json:"memUsedMb"`
	UptimeSeconds uint64    `json:"uptimeSeconds"`
	UserCount     int       `json:"userCount"`
	TaskCount     int       `json:"taskCount"`
	SampledAt     time.Time `json:"sampledAt"`
}

// StatUpdater periodically samples host metrics and store row counts.
type StatUpdater struct {
	db       *sql.DB
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool

	mu     sync.RWMutex
	latest SystemStats
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(db *sql.DB, interval time.Duration) *StatUpdater {
	return &StatUpdater{
		db:       db,
		interval: interval,
		done:     make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Dur("interval", su.interval).Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(su.interval)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.sample()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.sample()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// Snapshot returns the most recent sample.
func (su *StatUpdater) Snapshot() SystemStats {
	su.mu.RLock()
	defer su.mu.RUnlock()
	return su.latest
}

func (su *StatUpdater) sample() {
	stats := SystemStats{SampledAt: time.Now().UTC()}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemPercent = vm.UsedPercent
		stats.MemUsedMB = vm.Used / (1024 * 1024)
	} else {
		log.Warn().Err(err).Msg("StatUpdater: failed to read memory usage")
	}

	if uptime, err := host.Uptime(); err == nil {
		stats.UptimeSeconds = uptime
	}

	if err := su.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&stats.UserCount); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: failed to count users")
	}
	if err := su.db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&stats.TaskCount); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: failed to count tasks")
	}

	su.mu.Lock()
	su.latest = stats
	su.mu.Unlock()
}
