// Path: cmd/tracker/app_test.go
package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	body := "storage:\n  backend: csv\n  csv:\n    dir: " + filepath.Join(dir, "data") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewApp_StorageOnlyBuildsNoSearchClient(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	a, err := newApp(context.Background(), writeTestConfig(t), withStorage)
	require.NoError(t, err)
	defer a.close(context.Background())

	assert.Nil(t, a.client)
	assert.Nil(t, a.runner)
	require.NotNil(t, a.storage)

	h, err := a.storage.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestNewApp_SearchOnlyOpensNoStorage(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	a, err := newApp(context.Background(), writeTestConfig(t), withSearch)
	require.NoError(t, err)

	require.NotNil(t, a.client)
	assert.True(t, a.client.HasToken())
	assert.NotNil(t, a.runner)
	assert.Nil(t, a.storage)
	assert.Equal(t, []string{"co_authored", "generated"}, a.labels)
}
