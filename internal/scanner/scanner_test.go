package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/territory/internal/logging"
	"github.com/mvp-joe/territory/internal/resolve"
	"github.com/mvp-joe/territory/internal/uim"
)

// scanSource runs a full crawl session over a repo holding one python
// file and returns the decoded output streams.
func scanSource(t *testing.T, code string) ([]*uim.Node, []*uim.IndexItem, *Result) {
	t.Helper()
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "example.py"), []byte(code), 0o644))

	s, err := NewSession(Options{
		Root:           repo,
		Output:         filepath.Join(dir, "out"),
		SourcePatterns: []string{"**/*.py"},
		Logger:         logging.New("error"),
	})
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	nodes, err := uim.ReadNodes(res.NodesPath)
	require.NoError(t, err)
	items, err := uim.ReadIndexItems(res.SearchPath)
	require.NoError(t, err)
	return nodes, items, res
}

func dumpNode(n *uim.Node) string {
	return fmt.Sprintf("%d:%d (%d) d%d\n%s", n.Start.Line, n.Start.Column, n.Start.Offset, n.NestLevel, n.Text)
}

func TestScanRepo(t *testing.T) {
	code := `from math import pi

text = f'The value of Pi is approx. {pi}'

def foo(a: str = None):
    return text

# multi line
# comment

def main():
    print(foo())  # comment


class A:
    a = 123

    def bar(self):
        return foo()


def decorate(f):
    return f


@decorate
def baz():
    pass


if __name__ == '__main__':
    def cond():
        pass

    main()
`

	nodes, _, _ := scanSource(t, code)

	dumps := make([]string, len(nodes))
	for i, n := range nodes {
		dumps[i] = dumpNode(n)
	}
	assert.Equal(t, []string{
		"5:0 (64) d1\ndef foo(a: str = None):\n    return text",
		"11:0 (129) d1\ndef main():\n    print(foo())",
		"18:4 (197) d2\ndef bar(self):\n        return foo()",
		"15:0 (171) d1\nclass A:\n    a = 123\n\n    def bar(self): …",
		"22:0 (235) d1\ndef decorate(f):\n    return f",
		"26:0 (267) d1\n@decorate\ndef baz():\n    pass",
		"32:4 (330) d1\ndef cond():\n        pass",
		"0:0 (0) d0\nfrom math import pi\n\ntext = f'The value of Pi is approx. {pi}'\n\n" +
			"def foo(a: str = None): …\n\n# multi line\n# comment\n\n" +
			"def main(): …  # comment\n\n\n" +
			"class A: …\n\n\n" +
			"def decorate(f): …\n\n\n" +
			"@decorate\ndef baz(): …\n\n\n" +
			"if __name__ == '__main__':\n    def cond(): …\n\n    main()\n",
	}, dumps)
}

func TestScanMultipleDecorators(t *testing.T) {
	code := `
def decorate(f):
    return f


@decorate
@decorate
def f():
    pass

`

	nodes, _, _ := scanSource(t, code)

	dumps := make([]string, len(nodes))
	for i, n := range nodes {
		dumps[i] = dumpNode(n)
	}
	assert.Equal(t, []string{
		"2:0 (1) d1\ndef decorate(f):\n    return f",
		"6:0 (33) d1\n@decorate\n@decorate\ndef f():\n    pass",
		"0:0 (0) d0\n\ndef decorate(f): …\n\n\n@decorate\n@decorate\ndef f(): …\n\n",
	}, dumps)
}

func TestScanNesting(t *testing.T) {
	code := "class A:\n    class B:\n        def f(self):\n            pass\n"

	nodes, _, _ := scanSource(t, code)
	require.Len(t, nodes, 4)

	byText := map[uint32]uim.NodeKind{}
	for _, n := range nodes {
		byText[n.NestLevel] = n.Kind
	}
	assert.Equal(t, uim.NodeSourceFile, byText[0])
	assert.Equal(t, uim.NodeDefinition, byText[1])
	assert.Equal(t, uim.NodeDefinition, byText[2])
	assert.Equal(t, uim.NodeDefinition, byText[3])

	// Children flush before their parents.
	assert.Equal(t, uint32(3), nodes[0].NestLevel)
	assert.Equal(t, uint32(2), nodes[1].NestLevel)
	assert.Equal(t, uint32(1), nodes[2].NestLevel)
	assert.Equal(t, uint32(0), nodes[3].NestLevel)
}

func TestScanSearchIndex(t *testing.T) {
	code := `def foo(a: str = None):
    return a


class A:
    def bar(self):
        return foo()
`

	_, items, _ := scanSource(t, code)
	require.Len(t, items, 3)

	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	assert.Equal(t, []string{"foo", "bar", "A"}, keys)

	for _, it := range items {
		assert.Equal(t, uim.IndexSymbol, it.Kind)
		require.NotNil(t, it.Href)
		assert.Equal(t, "example.py", filepath.Base(it.Href.Path))
	}
	assert.Equal(t, uint32(0), items[0].Href.Offset)
	assert.Equal(t, "function_definition", items[0].Type)
	assert.Equal(t, "class_definition", items[2].Type)
}

func TestElidedRenderingForcesHref(t *testing.T) {
	code := "def foo(a):\n    return a\n"

	nodes, _, _ := scanSource(t, code)
	require.Len(t, nodes, 2)

	child, root := nodes[0], nodes[1]
	assert.Equal(t, "def foo(a):\n    return a", string(child.Text))
	assert.Equal(t, "def foo(a): …\n", string(root.Text))

	// Every token of the elided rendering anchors at the name token;
	// only the trailing whitespace after the rendering is unlinked.
	require.Greater(t, len(root.Tokens), 1)
	for _, tok := range root.Tokens[:len(root.Tokens)-1] {
		require.NotNil(t, tok.Href)
		assert.Equal(t, uint32(4), tok.Href.Offset)
		assert.Equal(t, "example.py", filepath.Base(tok.Href.Path))
	}
	assert.Nil(t, root.Tokens[len(root.Tokens)-1].Href)
}

func TestTokenOffsetsSliceNodeText(t *testing.T) {
	code := "def foo(a):\n    return a\n"

	nodes, _, _ := scanSource(t, code)
	for _, n := range nodes {
		require.NotEmpty(t, n.Tokens)
		assert.Equal(t, uint32(0), n.Tokens[0].Offset)
		for i := 1; i < len(n.Tokens); i++ {
			assert.Greater(t, n.Tokens[i].Offset, n.Tokens[i-1].Offset)
			assert.LessOrEqual(t, int(n.Tokens[i].Offset), len(n.Text))
		}
	}
}

type fixedResolver struct {
	target *resolve.Target
}

func (r fixedResolver) Definition(ctx context.Context, path string, line, column int) (*resolve.Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.target, nil
}

func TestDependencyPolicy(t *testing.T) {
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")
	ext := filepath.Join(dir, "vendor")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.MkdirAll(ext, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.py"), []byte("value = other\n"), 0o644))
	extFile := filepath.Join(ext, "lib.py")
	require.NoError(t, os.WriteFile(extFile, []byte("def helper():\n    pass\n"), 0o644))

	run := func(includeDeps bool) *Result {
		s, err := NewSession(Options{
			Root:           repo,
			Output:         filepath.Join(dir, fmt.Sprintf("out-%v", includeDeps)),
			IncludeDeps:    includeDeps,
			SourcePatterns: []string{"**/*.py"},
			Resolver:       fixedResolver{target: &resolve.Target{Path: extFile, Line: 1, Column: 4}},
			Logger:         logging.New("error"),
		})
		require.NoError(t, err)
		res, err := s.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	// Dependencies disabled: the referenced file is never queued, but
	// hrefs still point into it.
	res := run(false)
	require.Len(t, res.Files, 1)
	nodes, err := uim.ReadNodes(res.NodesPath)
	require.NoError(t, err)
	root := nodes[len(nodes)-1]
	found := false
	for _, tok := range root.Tokens {
		if tok.Href != nil && filepath.Base(tok.Href.Path) == "lib.py" {
			found = true
			assert.Equal(t, uint32(4), tok.Href.Offset)
		}
	}
	assert.True(t, found)
	require.NotEmpty(t, res.Refs)

	// Dependencies enabled: the referenced file is crawled too.
	res = run(true)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "main.py", filepath.Base(res.Files[0].Path))
	assert.Equal(t, "lib.py", filepath.Base(res.Files[1].Path))
	require.NotEmpty(t, res.Refs)
	assert.Equal(t, "main.py", filepath.Base(res.Refs[0].From))
	assert.Equal(t, "lib.py", filepath.Base(res.Refs[0].To))
}

type stallingResolver struct{}

func (stallingResolver) Definition(ctx context.Context, path string, line, column int) (*resolve.Target, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
		return nil, nil
	}
}

func TestFileTimeoutKeepsPartialOutput(t *testing.T) {
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "slow.py"), []byte("x = 1\n"), 0o644))

	s, err := NewSession(Options{
		Root:           repo,
		Output:         filepath.Join(dir, "out"),
		FileTimeout:    20 * time.Millisecond,
		SourcePatterns: []string{"**/*.py"},
		Resolver:       stallingResolver{},
		Logger:         logging.New("error"),
	})
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, StatusTimeout, res.Files[0].Status)

	// The partially built root node was still flushed.
	nodes, err := uim.ReadNodes(res.NodesPath)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, uim.NodeSourceFile, nodes[0].Kind)
}

func TestOffsetFailureIsPerFile(t *testing.T) {
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "a.py"), []byte("x = 1\n"), 0o644))
	target := filepath.Join(repo, "b.py")
	require.NoError(t, os.WriteFile(target, []byte("y = 2\n"), 0o644))

	s, err := NewSession(Options{
		Root:           repo,
		Output:         filepath.Join(dir, "out"),
		SourcePatterns: []string{"**/*.py"},
		Resolver:       fixedResolver{target: &resolve.Target{Path: target, Line: 9999, Column: 0}},
		Logger:         logging.New("error"),
	})
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	for _, f := range res.Files {
		assert.Equal(t, StatusError, f.Status)
	}
}

func TestConcurrentScanRejected(t *testing.T) {
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "a.py"), []byte("x = 1\n"), 0o644))

	held := flock.New(filepath.Join(out, "scan.lock"))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	s, err := NewSession(Options{
		Root:           repo,
		Output:         out,
		SourcePatterns: []string{"**/*.py"},
		Logger:         logging.New("error"),
	})
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another scan")
}
