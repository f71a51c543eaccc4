package workspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertFromFilepath(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Filepath
		wantErr bool
	}{
		{name: "plain", raw: "ui/overlay/list.go", want: Filepath{Kind: PathKindPlain, Filepath: "ui/overlay/list.go"}},
		{name: "cleaned", raw: "./ui//overlay/../list.go", want: Filepath{Kind: PathKindPlain, Filepath: "ui/list.go"}},
		{name: "file uri", raw: "file:///home/dev/app/main.go", want: Filepath{Kind: PathKindURI, Filepath: "/home/dev/app/main.go"}},
		{name: "empty", raw: "", wantErr: true},
		{name: "blank", raw: "   ", wantErr: true},
		{name: "nul byte", raw: "a\x00b", wantErr: true},
		{name: "other scheme", raw: "https://example.com/a.go", wantErr: true},
		{name: "uri without path", raw: "file://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertFromFilepath(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ConvertFromFilepath("")
	assert.True(t, errors.Is(err, ErrEmptyPath))
}

func TestSplitPath(t *testing.T) {
	dir, file, err := SplitPath("a/b/c.go")
	require.NoError(t, err)
	assert.Equal(t, "a/b", dir)
	assert.Equal(t, "c.go", file)

	dir, file, err = SplitPath("main.go")
	require.NoError(t, err)
	assert.Equal(t, "", dir)
	assert.Equal(t, "main.go", file)

	dir, file, err = SplitPath("/abs.go")
	require.NoError(t, err)
	assert.Equal(t, "/", dir)
	assert.Equal(t, "abs.go", file)

	_, _, err = SplitPath("")
	assert.Error(t, err)
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, "c.go", DisplayFileName("a/b/c.go"))
	assert.Equal(t, "", DisplayFileName(""))
	assert.Equal(t, "a/b", DirectoryDisplay("a/b/c.go"))
	assert.Equal(t, "", DirectoryDisplay("c.go"))
	assert.Equal(t, "", DirectoryDisplay("https://x/y"))
}

func TestFormatFileDescription(t *testing.T) {
	assert.Equal(t, "a/b", FormatFileDescription(Filepath{Kind: PathKindPlain, Filepath: "a/b/c.go"}))
	assert.Equal(t, "", FormatFileDescription(Filepath{Kind: PathKindPlain, Filepath: "c.go"}))
	assert.Equal(t, "file:///home/dev", FormatFileDescription(Filepath{Kind: PathKindURI, Filepath: "/home/dev/c.go"}))
}

func TestExpandPath(t *testing.T) {
	p, err := ExpandPath("~")
	require.NoError(t, err)
	assert.NotEqual(t, "~", p)

	assert.True(t, IsDirectory(t.TempDir()))
	assert.False(t, IsDirectory("/definitely/not/here"))
}
