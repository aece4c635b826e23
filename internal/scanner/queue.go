package scanner

import "errors"

// ErrQueueEmpty is returned by Pop when no path is pending.
var ErrQueueEmpty = errors.New("scan queue is empty")

// ScanQueue is the work list driving the crawl. Paths are deduplicated
// by canonical form; a path is visited at most once per run, even when
// its processing fails. Project files are always accepted; files
// discovered through resolution ("dependencies") are accepted only when
// the queue was configured to include them.
type ScanQueue struct {
	includeDeps bool
	pending     map[string]struct{}
	processed   map[string]struct{}
	paths       *Canonicalizer
	discovery   *Discovery
}

// NewScanQueue creates an empty queue. discovery may be nil when
// AddProjectDir is not used.
func NewScanQueue(includeDeps bool, paths *Canonicalizer, discovery *Discovery) *ScanQueue {
	return &ScanQueue{
		includeDeps: includeDeps,
		pending:     make(map[string]struct{}),
		processed:   make(map[string]struct{}),
		paths:       paths,
		discovery:   discovery,
	}
}

// AddProjectDir enumerates all source files under dir, excluding ignored
// directories, and adds each to the queue.
func (q *ScanQueue) AddProjectDir(dir string) error {
	files, err := q.discovery.Discover(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		q.Add(f)
	}
	return nil
}

// AddDependency adds a file discovered through reference resolution.
// A no-op unless dependency indexing was enabled.
func (q *ScanQueue) AddDependency(path string) {
	if q.includeDeps {
		q.Add(path)
	}
}

// Add canonicalizes path and marks it pending unless it was already
// processed this run.
func (q *ScanQueue) Add(path string) {
	p := q.paths.Canonical(path)
	if _, done := q.processed[p]; !done {
		q.pending[p] = struct{}{}
	}
}

// Pop removes and returns an arbitrary pending path, marking it
// processed as a side effect. The order across pending paths is
// unspecified; callers must not rely on it.
func (q *ScanQueue) Pop() (string, error) {
	for p := range q.pending {
		delete(q.pending, p)
		q.processed[p] = struct{}{}
		return p, nil
	}
	return "", ErrQueueEmpty
}

// Empty reports whether nothing is pending.
func (q *ScanQueue) Empty() bool {
	return len(q.pending) == 0
}

// PendingCount returns the number of paths waiting to be scanned.
func (q *ScanQueue) PendingCount() int {
	return len(q.pending)
}

// ProcessedCount returns the number of paths popped so far.
func (q *ScanQueue) ProcessedCount() int {
	return len(q.processed)
}
