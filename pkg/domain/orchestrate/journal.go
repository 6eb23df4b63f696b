package orchestrate

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Journal is the running human-readable log of one workflow run. Entries
// end up on the deployment record so operators can read what happened
// without access to the server logs; each entry is also mirrored to the
// structured logger as it is written.
//
// Safe for concurrent use; view provisioning writes from several
// goroutines at once.
type Journal struct {
	mu     sync.Mutex
	logger *zap.Logger
	events []string
}

func NewJournal(logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{logger: logger}
}

// Printf appends a timestamped entry.
func (j *Journal) Printf(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	j.mu.Lock()
	j.events = append(j.events, time.Now().UTC().Format(time.RFC3339)+" "+entry)
	j.mu.Unlock()
	j.logger.Info(entry)
}

// Entries returns a copy of the entries written so far.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string{}, j.events...)
}
