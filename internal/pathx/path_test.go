package pathx

import (
	"testing"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"root", "", nil, false},
		{"single", "docs", []string{"docs"}, false},
		{"nested", "docs/2024/q1", []string{"docs", "2024", "q1"}, false},
		{"spaces kept", "my docs/a b", []string{"my docs", "a b"}, false},
		{"leading slash", "/docs", nil, true},
		{"trailing slash", "docs/", nil, true},
		{"double slash", "docs//a", nil, true},
		{"dot", "docs/./a", nil, true},
		{"dotdot", "docs/..", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.segments)
			assert.Equal(t, tt.in, p.String())
		})
	}
}

func TestJoinAndParent(t *testing.T) {
	p, err := Join(Root(), "docs")
	require.NoError(t, err)
	p, err = Join(p, "2024")
	require.NoError(t, err)

	assert.Equal(t, "docs/2024", p.String())
	assert.Equal(t, "2024", p.Name())
	assert.Equal(t, "docs", p.Parent().String())
	assert.True(t, p.Parent().Parent().IsRoot())
	assert.True(t, Root().Parent().IsRoot())

	_, err = Join(p, "a/b")
	assert.ErrorIs(t, err, common.ErrInvalidPath)
	_, err = Join(p, "")
	assert.ErrorIs(t, err, common.ErrInvalidPath)
}

func TestIsDescendantOf_SegmentAware(t *testing.T) {
	docs := MustParse("docs")

	assert.True(t, MustParse("docs/a").IsDescendantOf(docs))
	assert.True(t, MustParse("docs/a/b").IsDescendantOf(docs))
	assert.False(t, docs.IsDescendantOf(docs))
	assert.False(t, MustParse("docs2").IsDescendantOf(docs))
	assert.False(t, MustParse("docs2/a").IsDescendantOf(docs))
	assert.True(t, docs.IsDescendantOf(Root()))
	assert.False(t, Root().IsDescendantOf(Root()))
}

func TestRebase(t *testing.T) {
	tests := []struct {
		name    string
		p, o, n string
		want    string
		wantErr bool
	}{
		{"equal", "a", "a", "b", "b", false},
		{"child", "a/x", "a", "b", "b/x", false},
		{"deep", "a/x/y", "a/x", "z", "z/y", false},
		{"into root", "a/x", "a", "", "x", false},
		{"from root", "x", "", "a", "a/x", false},
		{"partial segment", "ab/x", "a", "b", "", true},
		{"unrelated", "c/x", "a", "b", "", true},
		{"shorter", "a", "a/x", "b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RebaseString(tt.p, tt.o, tt.n)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFullPathAndIsUnder(t *testing.T) {
	assert.Equal(t, "docs", FullPath("", "docs"))
	assert.Equal(t, "docs/a", FullPath("docs", "a"))

	assert.True(t, IsUnder("docs", "docs"))
	assert.True(t, IsUnder("docs/a", "docs"))
	assert.False(t, IsUnder("docs2", "docs"))
	assert.True(t, IsUnder("anything", ""))
}

func TestValidateName(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "a/b", "/"} {
		assert.ErrorIs(t, ValidateName(bad), common.ErrInvalidPath, bad)
	}
	for _, ok := range []string{"a", "report.pdf", "name (copy)", ".hidden"} {
		assert.NoError(t, ValidateName(ok), ok)
	}
}
