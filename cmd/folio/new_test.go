package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-site")
	var out bytes.Buffer
	require.NoError(t, runNew(&out, dir))

	for _, name := range []string{
		".env",
		"folio.yaml",
		"public/robots.txt",
		"public/favicon.svg",
		"public/styles.css",
		"content/about.md",
		"content/hello-world.md",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.DirExists(t, filepath.Join(dir, "data"))

	cfg, err := os.ReadFile(filepath.Join(dir, "folio.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "name: My Site")

	env, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Regexp(t, `FOLIO_SESSION_SECRET=[0-9a-f]{64}`, string(env))

	src, err := os.ReadFile(filepath.Join(dir, "content", "hello-world.md"))
	require.NoError(t, err)
	post, err := parsePostFile("hello-world.md", src)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", post.Title)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, []string{"meta"}, post.Tags)
	assert.Contains(t, post.Body.PlainText(), "My Site")

	assert.Error(t, runNew(&out, dir), "existing directory")
}

func TestToTitle(t *testing.T) {
	assert.Equal(t, "My Blog", toTitle("my-blog"))
	assert.Equal(t, "Myblog", toTitle("myblog"))
	assert.Equal(t, "A B", toTitle("a__b"))
	assert.Equal(t, "Folio", toTitle("--"))
}
