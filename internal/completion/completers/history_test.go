package completers

import (
	"errors"
	"testing"

	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/atinylittleshell/gshcomp/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	commands []string
	err      error
}

func (f *fakeLister) RecentCommands(limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.commands[:min(limit, len(f.commands))], nil
}

func TestHistorySourceCommandsMerge(t *testing.T) {
	source := NewHistorySource(3, nil,
		&fakeLister{commands: []string{"make", "git status"}},
		&fakeLister{err: errors.New("broken")},
		&fakeLister{commands: []string{"git status", "ls", "cd /tmp"}},
	)
	assert.Equal(t, []string{"make", "git status", "ls"}, source.Commands())
	assert.Equal(t, "make", source.LastCommand())
}

func TestHistorySourceLastCommandSkipsEmpty(t *testing.T) {
	source := NewHistorySource(10, nil, &fakeLister{}, &fakeLister{commands: []string{"ls"}})
	assert.Equal(t, "ls", source.LastCommand())
	assert.Equal(t, "", NewHistorySource(10, nil).LastCommand())
}

type fakeStore struct {
	fakeLister
	last    string
	lastErr error
}

func (f *fakeStore) LastCommand() (string, error) { return f.last, f.lastErr }

func TestHistorySourceLastCommandPrefersStore(t *testing.T) {
	store := &fakeStore{fakeLister: fakeLister{commands: []string{"make"}}, last: "git push"}
	source := NewHistorySource(10, nil, store, &fakeLister{commands: []string{"ls"}})
	assert.Equal(t, "git push", source.LastCommand())

	store.lastErr = errors.New("locked")
	assert.Equal(t, "ls", source.LastCommand())

	store.lastErr = nil
	store.last = ""
	assert.Equal(t, "ls", source.LastCommand())
}

func TestHistorySourceWithHistoryManager(t *testing.T) {
	manager, err := history.NewHistoryManager(history.InMemory)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	var _ LastCommander = manager

	source := NewHistorySource(10, nil, manager)
	assert.Equal(t, "", source.LastCommand())

	for _, command := range []string{"ls", "make", "ls"} {
		_, err := manager.StartCommand(command, "/tmp")
		require.NoError(t, err)
	}
	assert.Equal(t, "ls", source.LastCommand())
	assert.Equal(t, []string{"ls", "make"}, source.Commands())
}

func TestHistorySourceComplete(t *testing.T) {
	source := NewHistorySource(100, nil, &fakeLister{commands: []string{
		"git status",
		"docker ps",
		"go test ./...",
		"git log --oneline",
	}})

	out, err := source.Complete(request(testCatalog(), "gt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"git status", "go test ./...", "git log --oneline"}, texts(out))
	for i, c := range out {
		assert.Equal(t, completion.BandHistory-i, c.Score)
		assert.Equal(t, completion.KindHistory, c.Kind)
	}

	out, err = source.Complete(request(testCatalog(), "git"))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, completion.BandHistoryPrefix, out[0].Score)
	assert.Equal(t, completion.BandHistoryPrefix-1, out[1].Score)

	out, err = source.Complete(request(testCatalog(), ""))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestHistorySourceCapsMatches(t *testing.T) {
	var commands []string
	for i := 0; i < 30; i++ {
		commands = append(commands, "echo "+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	source := NewHistorySource(100, nil, &fakeLister{commands: commands})
	out, err := source.Complete(request(testCatalog(), "echo"))
	require.NoError(t, err)
	assert.Len(t, out, maxHistoryMatches)
}
