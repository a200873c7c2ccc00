package completers

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atinylittleshell/gshcomp/internal/catalog"
	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/atinylittleshell/gshcomp/internal/core"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// osReadDir is a variable that can be overridden for testing.
var osReadDir = os.ReadDir

// CommandSource offers catalog commands and executables found on PATH.
type CommandSource struct {
	catalog *catalog.Catalog
	pathEnv func() string
}

// NewCommandSource creates a CommandSource. pathEnv defaults to $PATH.
func NewCommandSource(cat *catalog.Catalog, pathEnv func() string) *CommandSource {
	if pathEnv == nil {
		pathEnv = func() string { return os.Getenv("PATH") }
	}
	return &CommandSource{catalog: cat, pathEnv: pathEnv}
}

func (c *CommandSource) Name() string { return "commands" }

func (c *CommandSource) Complete(req *completion.Request) ([]completion.Completion, error) {
	word := req.Word()
	if IsPathBasedCommand(word) {
		return banded(GetExecutableCompletions(word, req.Cwd()), completion.BandCatalog, completion.KindCommand,
			func(string) string { return "executable" }), nil
	}

	var out []completion.Completion
	seen := map[string]bool{}
	add := func(name, description string) {
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, completion.Completion{
			Text:        name,
			Description: description,
			Score:       completion.BandCatalog,
			Kind:        completion.KindCommand,
		})
	}

	if c.catalog != nil {
		commands, err := c.catalog.CommandsWithPrefix(word)
		if err != nil {
			return nil, err
		}
		for _, cmd := range commands {
			add(cmd.Name, cmd.Description)
		}
		// Loose matches let the ranking cascade find abbreviations.
		if word != "" {
			for _, name := range fuzzy.FindFold(word, c.catalog.AllCommands()) {
				if cmd, ok := c.catalog.GetCommand(name); ok {
					add(cmd.Name, cmd.Description)
				}
			}
		}
	}

	if word != "" {
		for _, name := range c.GetAvailableCommands(word) {
			add(name, "executable")
		}
	}
	return out, nil
}

// IsPathBasedCommand determines if a command looks like a path rather than a simple command name.
func IsPathBasedCommand(command string) bool {
	return strings.Contains(command, "/")
}

// GetExecutableCompletions returns executable files that match the given
// path prefix. Relative prefixes are resolved against cwd.
func GetExecutableCompletions(pathPrefix, cwd string) []string {
	var searchDir, filePrefix string
	if strings.HasSuffix(pathPrefix, "/") {
		searchDir = pathPrefix
	} else {
		searchDir = filepath.Dir(pathPrefix)
		filePrefix = filepath.Base(pathPrefix)
	}

	resolvedDir := core.ExpandHome(searchDir)
	if !filepath.IsAbs(resolvedDir) {
		resolvedDir = filepath.Join(cwd, resolvedDir)
	}

	entries, err := osReadDir(resolvedDir)
	if err != nil {
		return nil
	}

	var completions []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Mode()&0111 == 0 {
			continue
		}
		if strings.HasSuffix(pathPrefix, "/") {
			completions = append(completions, pathPrefix+entry.Name())
		} else {
			completions = append(completions, strings.TrimSuffix(pathPrefix, filePrefix)+entry.Name())
		}
	}

	sort.Strings(completions)
	return completions
}

// GetAvailableCommands returns PATH executables that start with prefix.
func (c *CommandSource) GetAvailableCommands(prefix string) []string {
	commands := make(map[string]bool)
	for _, dir := range filepath.SplitList(c.pathEnv()) {
		entries, err := osReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
				commands[entry.Name()] = true
			}
		}
	}

	completions := make([]string, 0, len(commands))
	for cmd := range commands {
		completions = append(completions, cmd)
	}
	sort.Strings(completions)
	return completions
}
