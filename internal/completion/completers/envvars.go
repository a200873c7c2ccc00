package completers

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atinylittleshell/gshcomp/internal/bash"
	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/samber/lo"
)

const maxPathSuggestions = 10

var (
	defaultJavaRoots   = []string{"/usr/lib/jvm", "/opt/jdk", "/opt/java", "/usr/java", "/usr/local/java", "/opt/openjdk"}
	defaultHadoopHomes = []string{"/opt/hadoop", "/usr/local/hadoop"}
)

// EnvSource completes `export` lines from variables exported in history.
type EnvSource struct {
	history *HistorySource

	// JavaRoots hold JDK installations one level down.
	JavaRoots []string
	// HadoopHomes are candidate Hadoop installations.
	HadoopHomes []string
	// HadoopScanDir is searched for hadoop* installations.
	HadoopScanDir string
}

func NewEnvSource(history *HistorySource) *EnvSource {
	return &EnvSource{
		history:       history,
		JavaRoots:     defaultJavaRoots,
		HadoopHomes:   defaultHadoopHomes,
		HadoopScanDir: "/opt",
	}
}

func (e *EnvSource) Name() string { return "env" }

// Variables returns the exported variables found in history. The most recent
// export of a name wins.
func (e *EnvSource) Variables() map[string]string {
	vars := map[string]string{}
	if e.history == nil {
		return vars
	}
	commands := e.history.Commands()
	for i := len(commands) - 1; i >= 0; i-- {
		if !strings.Contains(commands[i], "export") {
			continue
		}
		for _, export := range bash.ParseExports(commands[i]) {
			vars[export.Name] = unquote(export.Value)
		}
	}
	return vars
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func (e *EnvSource) Complete(req *completion.Request) ([]completion.Completion, error) {
	parsed := req.Parsed
	if parsed.Command != "export" {
		return nil, nil
	}
	word := parsed.CurrentWord
	vars := e.Variables()

	pathTyped := strings.EqualFold(word, "PATH")
	afterPath := word == "" && strings.EqualFold(parsed.PreviousWord, "PATH")
	if pathTyped || afterPath {
		prefix := ""
		if pathTyped {
			prefix = word + "="
		}
		suggestions := SuggestPathValues(vars)
		out := make([]completion.Completion, 0, len(suggestions))
		for i, suggestion := range suggestions {
			out = append(out, completion.Completion{
				Text:        prefix + suggestion,
				Description: "PATH suggestion",
				Score:       completion.BandEnvPath - i,
				Kind:        completion.KindArgument,
			})
		}
		return out, nil
	}

	if name, value, ok := strings.Cut(word, "="); ok {
		var out []completion.Completion
		for _, path := range e.FindPaths(name) {
			if !strings.HasPrefix(path, value) {
				continue
			}
			out = append(out, completion.Completion{
				Text:        name + "=" + path,
				Description: "found " + path,
				Score:       completion.BandEnvValue - len(out),
				Kind:        completion.KindArgument,
			})
		}
		return out, nil
	}

	names := lo.Keys(vars)
	sort.Strings(names)
	out := make([]completion.Completion, 0, len(names))
	for _, name := range names {
		out = append(out, completion.Completion{
			Text:        name,
			Description: "= " + vars[name],
			Score:       completion.BandEnvName,
			Kind:        completion.KindArgument,
		})
	}
	return out, nil
}

// SuggestPathValues builds PATH values that append the bin directories of
// every known *_HOME variable.
func SuggestPathValues(vars map[string]string) []string {
	homes := lo.Filter(lo.Keys(vars), func(name string, _ int) bool {
		return strings.HasSuffix(name, "_HOME")
	})
	if len(homes) == 0 {
		return nil
	}
	sort.Strings(homes)

	existing := "$PATH"
	for name, value := range vars {
		if strings.EqualFold(name, "PATH") {
			existing = strings.ReplaceAll(value, "$path", "$PATH")
			break
		}
	}

	var suggestions []string
	if len(homes) > 1 {
		full, bins := existing, existing
		for _, home := range homes {
			full += ":$" + home + "/bin:$" + home + "/sbin"
			bins += ":$" + home + "/bin"
		}
		suggestions = append(suggestions, full, bins)
	}
	for _, home := range homes {
		base := "$" + home
		suggestions = append(suggestions,
			existing+":"+base+"/bin",
			existing+":"+base+"/bin:"+base+"/sbin",
			existing+":"+base+"/bin:"+base+"/sbin:"+base+"/lib",
		)
	}

	suggestions = lo.Uniq(suggestions)
	if len(suggestions) > maxPathSuggestions {
		suggestions = suggestions[:maxPathSuggestions]
	}
	return suggestions
}

// FindPaths discovers install directories for JAVA/JDK and HADOOP variables.
func (e *EnvSource) FindPaths(name string) []string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "java") || strings.Contains(lower, "jdk"):
		var paths []string
		for _, root := range e.JavaRoots {
			entries, err := osReadDir(root)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				dir := filepath.Join(root, entry.Name())
				if isDir(dir) && exists(filepath.Join(dir, "bin", "java")) {
					paths = append(paths, dir)
				}
			}
		}
		return paths
	case strings.Contains(lower, "hadoop"):
		var paths []string
		for _, home := range e.HadoopHomes {
			if exists(filepath.Join(home, "bin", "hadoop")) {
				paths = append(paths, home)
			}
		}
		if entries, err := osReadDir(e.HadoopScanDir); err == nil {
			for _, entry := range entries {
				dir := filepath.Join(e.HadoopScanDir, entry.Name())
				if strings.HasPrefix(entry.Name(), "hadoop") && isDir(dir) && exists(filepath.Join(dir, "bin", "hadoop")) {
					paths = append(paths, dir)
				}
			}
		}
		return lo.Uniq(paths)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
