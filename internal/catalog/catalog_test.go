package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchap/go-patricia/v2/patricia"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	t.Run("git is defined with subcommands", func(t *testing.T) {
		git, ok := c.GetCommand("git")
		require.True(t, ok)
		assert.Equal(t, "git", git.Name)
		assert.True(t, c.HasSubcommands("git"))

		commit, ok := c.GetSubcommand("git", "commit")
		require.True(t, ok)
		assert.Equal(t, "commit", commit.Name)

		opt, ok := commit.FindOption("-m")
		require.True(t, ok)
		assert.Equal(t, "--message", opt.Long)
		assert.True(t, opt.TakesValue)
	})

	t.Run("subcommands are sorted", func(t *testing.T) {
		subs, ok := c.GetSubcommands("systemctl")
		require.True(t, ok)
		require.NotEmpty(t, subs)
		for i := 1; i < len(subs); i++ {
			assert.Less(t, subs[i-1].Name, subs[i].Name)
		}
	})

	t.Run("commands without subcommands", func(t *testing.T) {
		assert.False(t, c.HasSubcommands("ls"))
		subs, ok := c.GetSubcommands("ls")
		assert.True(t, ok)
		assert.Empty(t, subs)
	})

	t.Run("unknown command", func(t *testing.T) {
		_, ok := c.GetCommand("definitely-not-a-command")
		assert.False(t, ok)
		_, ok = c.GetSubcommand("definitely-not-a-command", "x")
		assert.False(t, ok)
		_, ok = c.GetSubcommands("definitely-not-a-command")
		assert.False(t, ok)
		assert.False(t, c.HasSubcommands("definitely-not-a-command"))
	})

	t.Run("option values survive yaml decoding as strings", func(t *testing.T) {
		status, ok := c.GetSubcommand("git", "status")
		require.True(t, ok)
		opt, ok := status.FindOption("--untracked-files")
		require.True(t, ok)
		assert.Equal(t, []string{"no", "normal", "all"}, opt.Values)
	})

	t.Run("default catalog is loaded once", func(t *testing.T) {
		again, err := Default()
		require.NoError(t, err)
		assert.Same(t, c, again)
	})
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"defs/a.yaml": {Data: []byte(`
foo:
  description: first foo
  subcommands:
    bar:
      description: the bar
    baz: {}
fob:
  description: fob
`)},
		"defs/b.yaml": {Data: []byte(`
foo:
  description: second foo
zed:
  description: zed
`)},
	}

	c, err := Load(fsys, "defs/*.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"fob", "foo", "zed"}, c.AllCommands())

	foo, ok := c.GetCommand("foo")
	require.True(t, ok)
	assert.Equal(t, "second foo", foo.Description)

	names := func(cmds []*Command) []string {
		var out []string
		for _, cmd := range cmds {
			out = append(out, cmd.Name)
		}
		return out
	}
	withPrefix := func(prefix string) []string {
		cmds, err := c.CommandsWithPrefix(prefix)
		require.NoError(t, err)
		return names(cmds)
	}
	assert.Equal(t, []string{"fob", "foo"}, withPrefix("fo"))
	assert.Equal(t, []string{"fob", "foo", "zed"}, withPrefix(""))
	assert.Empty(t, withPrefix("q"))

	t.Run("corrupt index entry", func(t *testing.T) {
		c.index.Insert(patricia.Prefix("fox"), "not a command")
		cmds, err := c.CommandsWithPrefix("fo")
		assert.ErrorContains(t, err, `"fox"`)
		assert.Nil(t, cmds)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(fstest.MapFS{"x.yaml": {Data: []byte("foo: [")}}, "*.yaml")
		assert.Error(t, err)
	})
}

func TestNewNormalizesNames(t *testing.T) {
	c := New(map[string]*Command{
		"tool": {
			Subcommands: map[string]*Command{"sub": nil},
		},
		"skip": nil,
	})
	sub, ok := c.GetSubcommand("tool", "sub")
	require.True(t, ok)
	assert.Equal(t, "sub", sub.Name)
	assert.Equal(t, []string{"tool"}, c.AllCommands())
}
