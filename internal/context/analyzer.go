package context

import (
	"os"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

// dirInfo is the filesystem-derived part of a WorkContext, cached per directory.
type dirInfo struct {
	git     *GitContext
	project ProjectType
}

// AnalyzerConfig configures an Analyzer.
type AnalyzerConfig struct {
	// Getwd returns the working directory. Defaults to os.Getwd.
	Getwd func() (string, error)
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// CacheTTL is how long git and project detection is reused for a
	// directory. Zero disables caching.
	CacheTTL time.Duration
	// Git collects repository state. Defaults to a shell-backed retriever.
	Git    *GitStatusRetriever
	Logger *zap.Logger
}

// Analyzer builds WorkContext snapshots.
type Analyzer struct {
	getwd  func() (string, error)
	now    func() time.Time
	git    *GitStatusRetriever
	cache  *ttlcache.Cache[string, dirInfo]
	logger *zap.Logger
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{
		getwd:  cfg.Getwd,
		now:    cfg.Now,
		git:    cfg.Git,
		logger: logger,
	}
	if a.getwd == nil {
		a.getwd = os.Getwd
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.git == nil {
		a.git = NewGitStatusRetriever(nil, logger)
	}
	if cfg.CacheTTL > 0 {
		a.cache = ttlcache.New[string, dirInfo](
			ttlcache.WithTTL[string, dirInfo](cfg.CacheTTL),
			ttlcache.WithDisableTouchOnHit[string, dirInfo](),
		)
	}
	return a
}

// Analyze returns the context for the current working directory. recent is
// the list of recently executed commands, oldest first.
func (a *Analyzer) Analyze(recent []string) (*WorkContext, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, err
	}
	return a.AnalyzeDir(cwd, recent), nil
}

// AnalyzeDir returns the context for dir.
func (a *Analyzer) AnalyzeDir(dir string, recent []string) *WorkContext {
	info := a.dirInfo(dir)

	commands := make([]string, len(recent))
	copy(commands, recent)

	return &WorkContext{
		Cwd:            dir,
		Git:            info.git,
		Project:        info.project,
		Workflow:       DetectWorkflow(recent),
		Hour:           a.now().Hour(),
		RecentCommands: commands,
	}
}

// Invalidate drops the cached detection for dir.
func (a *Analyzer) Invalidate(dir string) {
	if a.cache != nil {
		a.cache.Delete(dir)
	}
}

func (a *Analyzer) dirInfo(dir string) dirInfo {
	if a.cache != nil {
		if item := a.cache.Get(dir); item != nil {
			return item.Value()
		}
	}

	info := dirInfo{
		git:     a.git.GetContext(dir),
		project: DetectProject(dir),
	}
	a.logger.Debug("analyzed directory",
		zap.String("dir", dir),
		zap.String("project", string(info.project)),
		zap.Bool("git", info.git != nil))

	if a.cache != nil {
		a.cache.Set(dir, info, ttlcache.DefaultTTL)
	}
	return info
}
