// Package catalog is the read-only repository of known commands, their
// options and their subcommands, loaded from bundled YAML definitions.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
	"gopkg.in/yaml.v3"
)

//go:embed commands/*.yaml
var commandsFS embed.FS

// Option describes a single command-line option.
type Option struct {
	Short       string   `yaml:"short"`
	Long        string   `yaml:"long"`
	Description string   `yaml:"description"`
	TakesValue  bool     `yaml:"takes_value"`
	Values      []string `yaml:"values"`
}

// Matches reports whether flag names this option.
func (o Option) Matches(flag string) bool {
	return flag != "" && (flag == o.Short || flag == o.Long)
}

// Command is a command or subcommand definition.
type Command struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Options     []Option            `yaml:"options"`
	Subcommands map[string]*Command `yaml:"subcommands"`
}

// FindOption returns the option named by flag, if any.
func (c *Command) FindOption(flag string) (Option, bool) {
	for _, opt := range c.Options {
		if opt.Matches(flag) {
			return opt, true
		}
	}
	return Option{}, false
}

// Subcommand is a name/description pair.
type Subcommand struct {
	Name        string
	Description string
}

// Catalog is immutable once loaded and safe for concurrent use.
type Catalog struct {
	commands map[string]*Command
	names    []string
	index    *patricia.Trie
}

// Load parses every YAML file in fsys matching pattern. Later files override
// earlier definitions of the same command.
func Load(fsys fs.FS, pattern string) (*Catalog, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list command definitions: %w", err)
	}
	sort.Strings(files)

	commands := make(map[string]*Command)
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		defs := make(map[string]*Command)
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path.Base(file), err)
		}
		for name, def := range defs {
			if def == nil {
				def = &Command{}
			}
			normalize(name, def)
			commands[name] = def
		}
	}

	return New(commands), nil
}

// New builds a catalog from already-parsed definitions.
func New(commands map[string]*Command) *Catalog {
	c := &Catalog{
		commands: make(map[string]*Command, len(commands)),
		index:    patricia.NewTrie(),
	}
	for name, def := range commands {
		if def == nil {
			continue
		}
		normalize(name, def)
		c.commands[name] = def
		c.names = append(c.names, name)
		c.index.Insert(patricia.Prefix(name), def)
	}
	sort.Strings(c.names)
	return c
}

// normalize makes the map key the authoritative name.
func normalize(name string, def *Command) {
	def.Name = name
	for subName, sub := range def.Subcommands {
		if sub == nil {
			sub = &Command{}
			def.Subcommands[subName] = sub
		}
		normalize(subName, sub)
	}
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the bundled definitions. It is
// loaded once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(commandsFS, "commands/*.yaml")
	})
	return defaultCatalog, defaultErr
}

// GetCommand returns the definition of name.
func (c *Catalog) GetCommand(name string) (*Command, bool) {
	cmd, ok := c.commands[name]
	return cmd, ok
}

// GetSubcommand returns the definition of sub under cmd.
func (c *Catalog) GetSubcommand(cmd, sub string) (*Command, bool) {
	parent, ok := c.commands[cmd]
	if !ok {
		return nil, false
	}
	def, ok := parent.Subcommands[sub]
	return def, ok
}

// GetSubcommands lists the subcommands of cmd sorted by name.
func (c *Catalog) GetSubcommands(cmd string) ([]Subcommand, bool) {
	parent, ok := c.commands[cmd]
	if !ok {
		return nil, false
	}
	subs := make([]Subcommand, 0, len(parent.Subcommands))
	for name, def := range parent.Subcommands {
		subs = append(subs, Subcommand{Name: name, Description: def.Description})
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].Name < subs[j].Name
	})
	return subs, true
}

// HasSubcommands reports whether cmd defines any subcommands.
func (c *Catalog) HasSubcommands(cmd string) bool {
	parent, ok := c.commands[cmd]
	return ok && len(parent.Subcommands) > 0
}

// AllCommands returns every command name, sorted.
func (c *Catalog) AllCommands() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// CommandsWithPrefix returns the commands whose name starts with prefix,
// sorted. Matching is case-sensitive since command names are.
func (c *Catalog) CommandsWithPrefix(prefix string) ([]*Command, error) {
	if prefix == "" {
		out := make([]*Command, 0, len(c.names))
		for _, name := range c.names {
			out = append(out, c.commands[name])
		}
		return out, nil
	}

	var out []*Command
	err := c.index.VisitSubtree(patricia.Prefix(prefix), func(key patricia.Prefix, item patricia.Item) error {
		cmd, ok := item.(*Command)
		if !ok {
			return fmt.Errorf("catalog index entry %q holds %T", key, item)
		}
		out = append(out, cmd)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}
