package sync

import (
	"github.com/charmbracelet/log"
)

// MaintenanceStore is the upkeep contract of the store.
// Implemented by repositories.MaintenanceRepository.
type MaintenanceStore interface {
	OptimizeSearchIndex() error
	Compact() error
}

// Maintain runs the post-cycle store upkeep: search index optimization
// followed by physical compaction. It must run only after both passes have
// committed. Failure is non-fatal to the already persisted sync result, so
// errors are logged and returned for reporting only.
func Maintain(store MaintenanceStore, logger *log.Logger) error {
	if err := store.OptimizeSearchIndex(); err != nil {
		logger.Warn("search index optimization failed", "reason", err)
		return err
	}
	if err := store.Compact(); err != nil {
		logger.Warn("store compaction failed", "reason", err)
		return err
	}
	logger.Info("store maintenance complete")
	return nil
}
