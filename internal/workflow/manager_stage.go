package workflow

import (
	"context"
	"errors"
	"sort"
	"time"

	"xrefcanon/internal/logging"
)

// runStage executes fn between stage start and completion records.
func (m *Manager) runStage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	stageLogger := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldStage, name))
	stageStart := time.Now()
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failed",
			logging.Error(err),
			logging.Duration("stage_duration", time.Since(stageStart)),
		)
		return err
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func sortStrings(list []string) {
	sort.Strings(list)
}
