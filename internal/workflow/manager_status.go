package workflow

import (
	"context"
	"os"

	"xrefcanon/internal/artifact"
	"xrefcanon/internal/mappingdb"
	"xrefcanon/internal/preflight"
)

// Status summarizes the environment, the cache and the last saved mapping.
type Status struct {
	Checks   []preflight.Result        `json:"checks"`
	Cache    []artifact.InventoryEntry `json:"cache"`
	LastRun  *mappingdb.Run            `json:"last_run,omitempty"`
	Registry string                    `json:"registry_mode"`
	Database string                    `json:"database"`
}

// Status gathers a status snapshot. Database errors are reported in the
// snapshot rather than returned since the export is optional.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	st := Status{
		Checks:   preflight.RunAll(ctx, m.cfg),
		Registry: "online",
		Database: m.cfg.MappingDB.Driver,
	}
	if m.cfg.Registry.Offline {
		st.Registry = "offline"
	}

	if _, err := os.Stat(m.artifacts.Root()); err == nil {
		inventory, err := m.artifacts.Inventory()
		if err != nil {
			return Status{}, err
		}
		st.Cache = inventory
	}

	dsn := m.cfg.MappingDSN()
	if m.cfg.MappingDB.Driver == mappingdb.DriverSQLite {
		if _, err := os.Stat(dsn); err != nil {
			st.Database += " (not created)"
			return st, nil
		}
	}
	store, err := mappingdb.Open(ctx, m.cfg.MappingDB.Driver, dsn)
	if err != nil {
		st.Database += " (" + err.Error() + ")"
		return st, nil
	}
	defer store.Close()
	run, ok, err := store.LatestRun(ctx)
	if err != nil {
		st.Database += " (" + err.Error() + ")"
		return st, nil
	}
	if ok {
		st.LastRun = &run
	}
	return st, nil
}
