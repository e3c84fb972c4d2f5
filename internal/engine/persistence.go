package engine

import (
	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/internal/content"
)

// WriteSnapshot saves the current catalog as a gob snapshot that a
// snapshot content source can load.
func (e *Engine) WriteSnapshot(path string) error {
	if err := content.WriteSnapshot(path, e.store); err != nil {
		return err
	}
	e.logger.Info("snapshot written", zap.String("path", path), zap.Int("articles", e.store.Len()))
	return nil
}

// flushLoop periodically persists analytics until Close.
func (e *Engine) flushLoop() {
	defer e.wg.Done()
	ticker := e.clock.Ticker(analyticsFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := e.analytics.Flush(); err != nil {
				e.logger.Warn("failed to flush analytics", zap.Error(err))
			}
		case <-e.stopCh:
			return
		}
	}
}
