package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/greenmangroup/wheelhouse/internal/database"
)

// SystemHandlers serves health and host/process observability endpoints.
type SystemHandlers struct {
	log      zerolog.Logger
	dataDir  string
	ledgerDB *database.DB
	cacheDB  *database.DB
}

// NewSystemHandlers creates system handlers for the given databases.
func NewSystemHandlers(log zerolog.Logger, dataDir string, ledgerDB, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:      log.With().Str("handler", "system").Logger(),
		dataDir:  dataDir,
		ledgerDB: ledgerDB,
		cacheDB:  cacheDB,
	}
}

// HandleHealth handles GET /api/health. Pings both databases with a quick
// integrity check; any failure reports unhealthy with a 503.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := "healthy"
	databases := map[string]string{}
	httpStatus := http.StatusOK

	for _, db := range []*database.DB{h.ledgerDB, h.cacheDB} {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(ctx); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Integrity check failed")
			databases[db.Name()] = "error: " + err.Error()
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		databases[db.Name()] = "ok"
	}

	h.writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"databases": databases,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleResources handles GET /api/system/resources. Reports CPU and
// memory usage plus the size of the data directory.
//
// The CPU sample interval is 100ms so the dashboard poll stays fast.
func (h *SystemHandlers) HandleResources(w http.ResponseWriter, r *http.Request) {
	cpuAvg := 0.0
	if percents, err := cpu.Percent(100*time.Millisecond, false); err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(percents) > 0 {
		cpuAvg = percents[0]
	}

	memUsed := 0.0
	if memStat, err := mem.VirtualMemory(); err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	} else {
		memUsed = memStat.UsedPercent
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cpu_percent":      cpuAvg,
		"memory_percent":   memUsed,
		"data_dir":         h.dataDir,
		"data_dir_size_mb": dirSizeMB(h.dataDir),
	})
}

// HandleDatabases handles GET /api/system/databases. Reports per-database
// file and page statistics.
func (h *SystemHandlers) HandleDatabases(w http.ResponseWriter, r *http.Request) {
	databases := map[string]interface{}{}

	for _, db := range []*database.DB{h.ledgerDB, h.cacheDB} {
		if db == nil {
			continue
		}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Failed to collect database stats")
			databases[db.Name()] = map[string]string{"error": err.Error()}
			continue
		}
		databases[db.Name()] = map[string]interface{}{
			"path":           db.Path(),
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
			"page_size":      stats.PageSize,
			"freelist_count": stats.FreelistCount,
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"databases": databases})
}

// dirSizeMB walks dir and sums file sizes. Errors are skipped; a missing
// directory reports zero.
func dirSizeMB(dir string) float64 {
	var total int64
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return float64(total) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
