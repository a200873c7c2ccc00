package completers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
}

func TestCommandSourceCatalogAndPath(t *testing.T) {
	binDir := t.TempDir()
	writeExecutable(t, filepath.Join(binDir, "gitk"))
	writeExecutable(t, filepath.Join(binDir, "git"))
	writeExecutable(t, filepath.Join(binDir, "make"))

	source := NewCommandSource(testCatalog(), func() string { return binDir })

	t.Run("prefix", func(t *testing.T) {
		out, err := source.Complete(request(testCatalog(), "gi"))
		require.NoError(t, err)
		assert.Equal(t, []string{"git", "gitk"}, texts(out))
		assert.Equal(t, "version control", out[0].Description)
		assert.Equal(t, completion.BandCatalog, out[0].Score)
		assert.Equal(t, completion.KindCommand, out[0].Kind)
	})

	t.Run("loose matches follow prefix matches", func(t *testing.T) {
		out, err := source.Complete(request(testCatalog(), "sc"))
		require.NoError(t, err)
		assert.Equal(t, []string{"systemctl"}, texts(out))
	})

	t.Run("empty word lists the catalog only", func(t *testing.T) {
		out, err := source.Complete(request(testCatalog(), ""))
		require.NoError(t, err)
		assert.Equal(t, []string{"git", "grep", "ls", "systemctl"}, texts(out))
	})
}

func TestCommandSourcePathBased(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, "scripts", "run.sh"))
	writeExecutable(t, filepath.Join(dir, "scripts", "release.sh"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "readme.md"), []byte("x"), 0644))

	source := NewCommandSource(testCatalog(), func() string { return "" })
	req := request(testCatalog(), "./scripts/r")

	assert.Equal(t, []string{"./scripts/release.sh", "./scripts/run.sh"}, GetExecutableCompletions("./scripts/r", dir))
	assert.Equal(t, []string{"scripts/release.sh", "scripts/run.sh"}, GetExecutableCompletions("scripts/", dir))
	assert.Empty(t, GetExecutableCompletions("missing/", dir))

	out, err := source.Complete(req)
	require.NoError(t, err)
	assert.NotContains(t, texts(out), "git")
}

func TestIsPathBasedCommand(t *testing.T) {
	assert.True(t, IsPathBasedCommand("./run"))
	assert.True(t, IsPathBasedCommand("/usr/bin/ls"))
	assert.True(t, IsPathBasedCommand("~/bin/x"))
	assert.False(t, IsPathBasedCommand("git"))
}

func TestGetAvailableCommandsSkipsUnreadableDirs(t *testing.T) {
	original := osReadDir
	defer func() { osReadDir = original }()

	osReadDir = func(name string) ([]os.DirEntry, error) {
		if name == "/bad" {
			return nil, os.ErrPermission
		}
		return original(name)
	}

	binDir := t.TempDir()
	writeExecutable(t, filepath.Join(binDir, "htop"))
	source := NewCommandSource(nil, func() string { return "/bad" + string(os.PathListSeparator) + binDir })
	assert.Equal(t, []string{"htop"}, source.GetAvailableCommands("h"))
}
