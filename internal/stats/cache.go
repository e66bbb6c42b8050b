package stats

import (
	"log/slog"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/store"
)

// Cache keeps the arena's ExerciseHistory rows in sync with raw performance
// rows. A history row exists exactly while its catalog id has at least one
// performance.
type Cache struct {
	arena  *store.Store
	engine *Engine
	log    *slog.Logger
}

// NewCache creates a Cache over the arena.
func NewCache(arena *store.Store, engine *Engine, log *slog.Logger) *Cache {
	return &Cache{arena: arena, engine: engine, log: log}
}

// ForCatalogID returns the cached statistics for an exercise, recomputing
// them first if none are cached yet.
func (c *Cache) ForCatalogID(catalogID string) *models.ExerciseHistory {
	if h := c.arena.History(catalogID); h != nil {
		return h
	}
	return c.Refresh(catalogID)
}

// Refresh recomputes one exercise's statistics from its full performance
// history and stores the result. When no performances remain the cached row
// is dropped and the zeroed result is returned.
func (c *Cache) Refresh(catalogID string) *models.ExerciseHistory {
	perfs := c.arena.PerformancesFor(catalogID)
	h := c.engine.Recalculate(catalogID, perfs)
	if len(perfs) == 0 {
		c.arena.DeleteHistory(catalogID)
		return &h
	}
	c.arena.PutHistory(&h)
	c.log.Debug("exercise stats recomputed", "catalog_id", catalogID, "sessions", h.TotalSessions)
	return &h
}
