package workers

import (
	"fmt"
	"log/slog"
)

// Manager starts and stops a fixed set of workers.
type Manager struct {
	workers []Worker
	logger  *slog.Logger
}

func NewManager(logger *slog.Logger, workers ...Worker) *Manager {
	return &Manager{
		workers: workers,
		logger:  logger,
	}
}

// Start starts workers in order. Workers already started are stopped if one fails.
func (m *Manager) Start() error {
	m.logger.Info("Starting workers", "worker_count", len(m.workers))

	for i, worker := range m.workers {
		if err := worker.Start(); err != nil {
			for _, started := range m.workers[:i] {
				started.Stop()
			}
			return fmt.Errorf("failed to start worker %s: %w", worker.Name(), err)
		}
		m.logger.Info("Worker started", "name", worker.Name())
	}

	return nil
}

// Stop stops workers in reverse start order.
func (m *Manager) Stop() {
	for i := len(m.workers) - 1; i >= 0; i-- {
		m.logger.Info("Stopping worker", "name", m.workers[i].Name())
		m.workers[i].Stop()
	}
	m.logger.Info("All workers stopped")
}
