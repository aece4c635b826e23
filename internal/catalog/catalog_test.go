package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/territory/internal/scanner"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleResult(runID string) *scanner.Result {
	return &scanner.Result{
		RunID:      runID,
		Root:       "/repo",
		NodesPath:  "/out/nodes.uim",
		SearchPath: "/out/search.uim",
		Files: []scanner.FileResult{
			{Path: "/repo/a.py", Status: scanner.StatusOK},
			{Path: "/repo/b.py", Status: scanner.StatusTimeout, Detail: "context deadline exceeded"},
		},
		Refs: []scanner.RefEdge{
			{From: "/repo/a.py", To: "/repo/b.py"},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestRecordAndLatestRun(t *testing.T) {
	c := openTestCatalog(t)

	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.RecordRun(sampleResult("run-1"), started))
	require.NoError(t, c.RecordRun(sampleResult("run-2"), started.Add(time.Hour)))

	latest, err := c.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-2", latest.ID)
	assert.Equal(t, "/repo", latest.Root)
	assert.Equal(t, 2, latest.FileCount)
	assert.Equal(t, 1, latest.Failed)
	assert.Equal(t, 1500*time.Millisecond, latest.Duration)
	assert.True(t, latest.StartedAt.Equal(started.Add(time.Hour)))
}

func TestLatestRunEmpty(t *testing.T) {
	c := openTestCatalog(t)

	latest, err := c.LatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRunFiles(t *testing.T) {
	c := openTestCatalog(t)
	require.NoError(t, c.RecordRun(sampleResult("run-1"), time.Now()))

	files, err := c.RunFiles("run-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/repo/a.py", files[0].Path)
	assert.Equal(t, scanner.StatusOK, files[0].Status)
	assert.Equal(t, scanner.StatusTimeout, files[1].Status)
	assert.Equal(t, "context deadline exceeded", files[1].Detail)
}

func TestRunRefs(t *testing.T) {
	c := openTestCatalog(t)
	require.NoError(t, c.RecordRun(sampleResult("run-1"), time.Now()))

	refs, err := c.RunRefs("run-1")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "/repo/a.py", refs[0].From)
	assert.Equal(t, "/repo/b.py", refs[0].To)

	refs, err = c.RunRefs("missing")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	c := openTestCatalog(t)
	require.NoError(t, c.RecordRun(sampleResult("run-1"), time.Now()))
	assert.Error(t, c.RecordRun(sampleResult("run-1"), time.Now()))
}
