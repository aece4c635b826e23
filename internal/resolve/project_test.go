package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveSameFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.py", "def helper():\n    pass\n\nhelper()\n")

	r, err := NewProjectResolver(dir)
	require.NoError(t, err)

	target, err := r.Definition(context.Background(), path, 4, 0)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, path, target.Path)
	assert.Equal(t, 1, target.Line)
	assert.Equal(t, 4, target.Column)
}

func TestResolveFromImport(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "lib.py", "def greet(name):\n    return name\n")
	main := writeFile(t, dir, "main.py", "from lib import greet\n\ngreet('x')\n")

	r, err := NewProjectResolver(dir)
	require.NoError(t, err)

	target, err := r.Definition(context.Background(), main, 3, 0)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, lib, target.Path)
	assert.Equal(t, 1, target.Line)
	assert.Equal(t, 4, target.Column)
}

func TestResolveAliasedImport(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "pkg/util.py", "def run():\n    pass\n")
	writeFile(t, dir, "pkg/__init__.py", "")
	main := writeFile(t, dir, "main.py", "from pkg.util import run as go\n\ngo()\n")

	r, err := NewProjectResolver(dir)
	require.NoError(t, err)

	target, err := r.Definition(context.Background(), main, 3, 0)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, lib, target.Path)
	assert.Equal(t, 1, target.Line)
}

func TestResolveModuleImport(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "config.py", "VALUE = 1\n")
	main := writeFile(t, dir, "main.py", "import config\n\nconfig.VALUE\n")

	r, err := NewProjectResolver(dir)
	require.NoError(t, err)

	target, err := r.Definition(context.Background(), main, 3, 0)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, lib, target.Path)
	assert.Equal(t, 1, target.Line)
	assert.Equal(t, 0, target.Column)
}

func TestResolveRelativeImport(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "pkg/helpers.py", "def shared():\n    pass\n")
	main := writeFile(t, dir, "pkg/app.py", "from .helpers import shared\n\nshared()\n")

	r, err := NewProjectResolver(dir)
	require.NoError(t, err)

	target, err := r.Definition(context.Background(), main, 3, 0)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, lib, target.Path)
}

func TestResolveUnknownIdentifier(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.py", "print('hello')\n")

	r, err := NewProjectResolver(dir)
	require.NoError(t, err)

	target, err := r.Definition(context.Background(), path, 1, 0)
	require.NoError(t, err)
	assert.Nil(t, target)
}

func TestResolveCanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.py", "x = 1\n")

	r, err := NewProjectResolver(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Definition(ctx, path, 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
