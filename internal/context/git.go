package context

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atinylittleshell/gshcomp/internal/bash"
	"go.uber.org/zap"
)

const gitQueryTimeout = 500 * time.Millisecond

// CommandRunner runs a shell command in dir and returns its trimmed stdout.
type CommandRunner func(ctx context.Context, dir string, command string) (string, error)

// GitStatusRetriever collects repository state for a directory.
type GitStatusRetriever struct {
	run    CommandRunner
	logger *zap.Logger
}

// NewGitStatusRetriever creates a new GitStatusRetriever. A nil runner runs
// commands through the embedded shell interpreter.
func NewGitStatusRetriever(run CommandRunner, logger *zap.Logger) *GitStatusRetriever {
	if run == nil {
		run = bash.Output
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitStatusRetriever{
		run:    run,
		logger: logger,
	}
}

// FindGitRoot walks up from dir looking for a .git entry.
func FindGitRoot(dir string) string {
	if dir == "" {
		return ""
	}
	current := filepath.Clean(dir)
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// GetContext returns nil when dir is not inside a git repository. Git
// failures leave the corresponding fields at their zero value.
func (r *GitStatusRetriever) GetContext(dir string) *GitContext {
	root := FindGitRoot(dir)
	if root == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gitQueryTimeout)
	defer cancel()

	git := &GitContext{Root: root}

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(3)
	go func() {
		defer wg.Done()
		out, err := r.run(ctx, dir, "git status --porcelain")
		if err != nil {
			r.logger.Debug("error running `git status --porcelain`", zap.Error(err))
			return
		}
		uncommitted, untracked := parsePorcelain(out)
		mu.Lock()
		git.Uncommitted, git.Untracked = uncommitted, untracked
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		out, err := r.run(ctx, dir, "git branch --show-current")
		if err != nil {
			r.logger.Debug("error running `git branch --show-current`", zap.Error(err))
			return
		}
		mu.Lock()
		git.Branch = strings.TrimSpace(out)
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		out, err := r.run(ctx, dir, "git log @{u}..HEAD --oneline")
		if err != nil {
			// No upstream configured.
			return
		}
		mu.Lock()
		git.Unpushed = strings.TrimSpace(out) != ""
		mu.Unlock()
	}()
	wg.Wait()

	return git
}

func parsePorcelain(status string) (uncommitted bool, untracked bool) {
	for _, line := range strings.Split(status, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "??") {
			untracked = true
		} else {
			uncommitted = true
		}
	}
	return uncommitted, untracked
}
