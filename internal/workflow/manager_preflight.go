package workflow

import (
	"context"
	"fmt"
	"strings"

	"xrefcanon/internal/logging"
	"xrefcanon/internal/preflight"
)

// runPreflightChecks validates the environment before a build. Returns nil
// when all required checks pass, or an error describing every failure.
func (m *Manager) runPreflightChecks(ctx context.Context) error {
	logger := logging.WithContext(ctx, m.logger)
	results := preflight.RunAll(ctx, m.cfg)

	var failures []string
	for _, r := range results {
		switch {
		case r.Passed:
			logger.Info("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
		case r.Optional:
			logging.WarnWithContext(logger, "optional preflight check failed", "preflight_degraded",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldErrorHint, "cached registry copies are used when available"),
				logging.String(logging.FieldImpact, "registry refresh may fail"),
			)
		default:
			logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldErrorHint, "fix the reported issue and rerun"),
			)
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; "))
	}
	return nil
}
