package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_JSONToFile(t *testing.T) {
	logger := log.New()
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "lens.log")

	closer, err := apply(logger, Options{Level: "debug", Format: "json", File: path}, &stderr)
	require.NoError(t, err)

	logger.WithField("request_id", "abc").Debug("hello")
	require.NoError(t, closer.Close())

	var line map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "abc", line["request_id"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stderr.String(), string(data))
}

func TestApply_LevelFilters(t *testing.T) {
	logger := log.New()
	var stderr bytes.Buffer
	_, err := apply(logger, Options{Level: "warn"}, &stderr)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	assert.NotContains(t, stderr.String(), "quiet")
	assert.Contains(t, stderr.String(), "loud")
}

func TestApply_Rejects(t *testing.T) {
	_, err := apply(log.New(), Options{Level: "chatty"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = apply(log.New(), Options{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
