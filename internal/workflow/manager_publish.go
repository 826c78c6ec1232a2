package workflow

import (
	"context"

	"xrefcanon/internal/publish"
)

// Publish uploads the dump directory to the configured bucket while holding
// the dump lock so no half-written dump is uploaded.
func (m *Manager) Publish(ctx context.Context, opts ...func(*publish.Options)) ([]publish.Upload, error) {
	pubOpts := publish.OptionsFromConfig(m.cfg.Publish)
	for _, opt := range opts {
		opt(&pubOpts)
	}
	publisher, err := publish.New(ctx, pubOpts, m.logger)
	if err != nil {
		return nil, err
	}

	writer := m.dumpWriter()
	unlock, err := writer.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var uploads []publish.Upload
	err = m.runStage(ctx, "publish", func(ctx context.Context) error {
		var err error
		uploads, err = publisher.UploadDir(ctx, writer.Dir())
		return err
	})
	return uploads, err
}
