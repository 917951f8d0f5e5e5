package version

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.True(t, IsFirstRun())

	var buf bytes.Buffer
	PrintFirstRunNotice(&buf)
	assert.Contains(t, buf.String(), "workflow-lens setup")
	assert.FileExists(t, filepath.Join(home, StateDir, ".initialized"))
	assert.False(t, IsFirstRun())
}

func TestFirstRun_ConfigPresent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".workflow-lens.yaml"), []byte("llm: {}\n"), 0o600))

	assert.False(t, IsFirstRun())
}
