package history

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// ShellHistory reads bash and zsh history files.
type ShellHistory struct {
	paths []string
}

// NewShellHistory creates a reader over the given files. Missing files are
// skipped.
func NewShellHistory(paths ...string) *ShellHistory {
	return &ShellHistory{paths: paths}
}

// RecentCommands returns up to limit distinct commands, most recent first.
// Files are read in order, so later files count as more recent.
func (s *ShellHistory) RecentCommands(limit int) ([]string, error) {
	var lines []string
	for _, path := range s.paths {
		fileLines, err := readHistoryFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}

	seen := make(map[string]bool, len(lines))
	commands := make([]string, 0, min(len(lines), limit))
	for i := len(lines) - 1; i >= 0 && len(commands) < limit; i-- {
		if seen[lines[i]] {
			continue
		}
		seen[lines[i]] = true
		commands = append(commands, lines[i])
	}
	return commands, nil
}

func readHistoryFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if command := parseHistoryLine(scanner.Text()); command != "" {
			lines = append(lines, command)
		}
	}
	return lines, scanner.Err()
}

// parseHistoryLine strips the zsh extended-history prefix ": <ts>:<dur>;"
// and bash timestamp comments.
func parseHistoryLine(line string) string {
	if strings.HasPrefix(line, "#") {
		return ""
	}
	if strings.HasPrefix(line, ": ") {
		if _, command, ok := strings.Cut(line, ";"); ok {
			line = command
		}
	}
	return strings.TrimSpace(line)
}
