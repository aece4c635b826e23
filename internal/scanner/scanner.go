package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/mvp-joe/territory/internal/logging"
	"github.com/mvp-joe/territory/internal/resolve"
	"github.com/mvp-joe/territory/internal/syntax"
	"github.com/mvp-joe/territory/internal/uim"
)

// FileStatus is the per-file outcome of one crawl step.
type FileStatus string

const (
	StatusOK      FileStatus = "ok"
	StatusError   FileStatus = "error"
	StatusTimeout FileStatus = "timeout"
)

// FileResult records how one queued file fared. A non-ok status never
// fails the run; output flushed before the failure is kept.
type FileResult struct {
	Path   string
	Status FileStatus
	Detail string
}

// RefEdge is one cross-file reference discovered during the crawl.
type RefEdge struct {
	From string
	To   string
}

// Progress is delivered to the progress callback after each file.
type Progress struct {
	Path      string
	Processed int
	Pending   int
}

// Result summarizes a finished crawl run.
type Result struct {
	RunID      string
	Root       string
	NodesPath  string
	SearchPath string
	Files      []FileResult
	Refs       []RefEdge
	Duration   time.Duration
}

// Failed returns the number of files that did not complete cleanly.
func (r *Result) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Status != StatusOK {
			n++
		}
	}
	return n
}

// Options configures a crawl session.
type Options struct {
	// Root is the repository to index.
	Root string
	// Output is the directory receiving the two streams.
	Output string
	// IncludeDeps also queues files discovered outside Root.
	IncludeDeps bool
	// FileTimeout bounds the walk of a single file. Zero means no bound.
	FileTimeout time.Duration

	SourcePatterns []string
	IgnorePatterns []string
	NodesFile      string
	SearchFile     string

	// Resolver overrides the default project resolver. Optional.
	Resolver resolve.Resolver
	// OnProgress is called after each file. Optional.
	OnProgress func(Progress)

	Logger *log.Logger
}

// Session is one crawl over a repository: a single sequential loop that
// pops paths, walks them, and flushes records. All caches and both
// output streams are owned by the session and die with it.
type Session struct {
	opts Options
	log  *log.Logger
}

// NewSession validates opts and prepares a session.
func NewSession(opts Options) (*Session, error) {
	st, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repo root: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("repo root is not a directory: %s", opts.Root)
	}
	if opts.NodesFile == "" {
		opts.NodesFile = "nodes.uim"
	}
	if opts.SearchFile == "" {
		opts.SearchFile = "search.uim"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{opts: opts, log: logger}, nil
}

// Run executes the crawl to its fixed point: the queue is seeded with
// the project files and drains as files are walked, growing only when
// resolution discovers referenced files. Per-file failures are recorded
// and skipped; codec and stream errors abort the run.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := os.MkdirAll(s.opts.Output, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Both streams are rewritten from scratch, so two concurrent runs
	// against the same output directory would corrupt each other.
	lock := flock.New(filepath.Join(s.opts.Output, "scan.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another scan is writing to %s", s.opts.Output)
	}
	defer lock.Unlock()

	result := &Result{
		RunID:      uuid.NewString(),
		Root:       s.opts.Root,
		NodesPath:  filepath.Join(s.opts.Output, s.opts.NodesFile),
		SearchPath: filepath.Join(s.opts.Output, s.opts.SearchFile),
	}
	s.log.Info("starting scan",
		logging.FieldRunID, result.RunID,
		logging.FieldRoot, s.opts.Root,
		logging.FieldOutput, s.opts.Output)

	paths := NewCanonicalizer()
	discovery, err := NewDiscovery(s.opts.SourcePatterns, s.opts.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	queue := NewScanQueue(s.opts.IncludeDeps, paths, discovery)
	offsets, err := NewOffsetResolver()
	if err != nil {
		return nil, err
	}

	resolver := s.opts.Resolver
	if resolver == nil {
		resolver, err = resolve.NewProjectResolver(s.opts.Root)
		if err != nil {
			return nil, err
		}
	}

	nodes, err := uim.NewNodeWriter(result.NodesPath)
	if err != nil {
		return nil, err
	}
	defer nodes.Close()
	search, err := uim.NewSearchIndexWriter(result.SearchPath)
	if err != nil {
		return nil, err
	}
	defer search.Close()

	refs := make(map[RefEdge]struct{})
	b := &builder{
		root:     paths.Canonical(s.opts.Root),
		nodes:    nodes,
		search:   search,
		queue:    queue,
		offsets:  offsets,
		resolver: resolver,
		log:      s.log,
		onRef: func(from, to string) {
			refs[RefEdge{From: paths.Canonical(from), To: paths.Canonical(to)}] = struct{}{}
		},
	}

	if err := queue.AddProjectDir(s.opts.Root); err != nil {
		return nil, err
	}

	for !queue.Empty() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		path, err := queue.Pop()
		if err != nil {
			break
		}

		fr, fatal := s.scanFile(ctx, b, offsets, path)
		if fatal != nil {
			return result, fmt.Errorf("scan aborted at %s: %w", path, fatal)
		}
		result.Files = append(result.Files, fr)
		if s.opts.OnProgress != nil {
			s.opts.OnProgress(Progress{
				Path:      path,
				Processed: queue.ProcessedCount(),
				Pending:   queue.PendingCount(),
			})
		}
	}

	if err := nodes.Close(); err != nil {
		return result, err
	}
	if err := search.Close(); err != nil {
		return result, err
	}

	for edge := range refs {
		result.Refs = append(result.Refs, edge)
	}
	sort.Slice(result.Refs, func(i, j int) bool {
		if result.Refs[i].From != result.Refs[j].From {
			return result.Refs[i].From < result.Refs[j].From
		}
		return result.Refs[i].To < result.Refs[j].To
	})

	result.Duration = time.Since(start)
	s.log.Info("scan finished",
		logging.FieldRunID, result.RunID,
		logging.FieldProcessed, len(result.Files),
		logging.FieldDuration, result.Duration)
	return result, nil
}

// scanFile walks one file under its own deadline and classifies the
// outcome. The second return value is non-nil only for errors that must
// stop the whole run.
func (s *Session) scanFile(ctx context.Context, b *builder, offsets *OffsetResolver, path string) (FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("failed to read file", logging.FieldPath, path, logging.FieldError, err)
		return FileResult{Path: path, Status: StatusError, Detail: err.Error()}, nil
	}
	tree, err := syntax.Parse(path, content)
	if err != nil {
		s.log.Warn("failed to parse file", logging.FieldPath, path, logging.FieldError, err)
		return FileResult{Path: path, Status: StatusError, Detail: err.Error()}, nil
	}
	offsets.Seed(path, content)

	fctx := ctx
	if s.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, s.opts.FileTimeout)
		defer cancel()
	}
	b.ctx = fctx

	walkErr := b.buildFile(path, tree)
	switch {
	case walkErr == nil:
		return FileResult{Path: path, Status: StatusOK}, nil
	case errors.Is(walkErr, ErrOffset):
		s.log.Warn("offset resolution failed", logging.FieldPath, path, logging.FieldError, walkErr)
		return FileResult{Path: path, Status: StatusError, Detail: walkErr.Error()}, nil
	case errors.Is(walkErr, context.DeadlineExceeded) && ctx.Err() == nil:
		s.log.Warn("file walk timed out", logging.FieldPath, path)
		return FileResult{Path: path, Status: StatusTimeout, Detail: walkErr.Error()}, nil
	default:
		return FileResult{}, walkErr
	}
}
