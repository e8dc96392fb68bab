package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputTo(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "dir")

	err := OutputTo([]File{&RawFile{FPath: "index.mjs", Content: []byte("first version, longer")}}, dest)
	require.NoError(t, err)

	err = OutputTo([]File{&RawFile{FPath: "index.mjs", Content: []byte("second")}}, dest)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dest, "index.mjs"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestOutputTo_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := OutputTo([]File{&RawFile{FPath: "index.mjs"}}, blocker)
	assert.Error(t, err)
}
