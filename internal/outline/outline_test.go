package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/territory/internal/uim"
)

func testNodes() []*uim.Node {
	return []*uim.Node{
		{Kind: uim.NodeDefinition, Path: "a.py", NestLevel: 1,
			Start: uim.Location{Line: 5, Column: 0, Offset: 40},
			Text:  []byte("def foo():\n    pass")},
		{Kind: uim.NodeDefinition, Path: "a.py", NestLevel: 1,
			Start: uim.Location{Line: 1, Column: 0, Offset: 0},
			Text:  []byte("class A: …")},
		{Kind: uim.NodeSourceFile, Path: "a.py", NestLevel: 0,
			Text: []byte("class A: …\n\ndef foo(): …\n")},
		{Kind: uim.NodeSourceFile, Path: "b.py", NestLevel: 0,
			Text: []byte("x = 1\n")},
	}
}

func TestFileOutline(t *testing.T) {
	o := New(testNodes())

	text, err := o.File("a.py")
	require.NoError(t, err)
	assert.Equal(t, "class A: …\n\ndef foo(): …\n", text)

	_, err = o.File("missing.py")
	assert.Error(t, err)
}

func TestDefinitionsSourceOrder(t *testing.T) {
	o := New(testNodes())

	defs := o.Definitions("a.py")
	require.Len(t, defs, 2)
	assert.Equal(t, "class A: …", defs[0].Header)
	assert.Equal(t, uint32(0), defs[0].Offset)
	assert.Equal(t, "def foo():", defs[1].Header)
	assert.Equal(t, uint32(5), defs[1].Line)

	assert.Empty(t, o.Definitions("b.py"))
}

func TestPaths(t *testing.T) {
	o := New(testNodes())
	assert.Equal(t, []string{"a.py", "b.py"}, o.Paths())
}
