// Package job holds the scheduled background jobs of the web server.
package job

import (
	"github.com/acquisitions/api/logger"
	"github.com/acquisitions/api/security"
)

// PruneWindowJob evicts idle rate-limit windows from the in-memory store.
// Only scheduled when the server runs without redis.
type PruneWindowJob struct {
	store *security.MemoryWindowStore
}

func NewPruneWindowJob(store *security.MemoryWindowStore) *PruneWindowJob {
	return &PruneWindowJob{store: store}
}

func (j *PruneWindowJob) Run() {
	if n := j.store.Prune(); n > 0 {
		logger.Debugf("pruned %d idle rate-limit windows", n)
	}
}
