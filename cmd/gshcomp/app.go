package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atinylittleshell/gshcomp/internal/catalog"
	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/atinylittleshell/gshcomp/internal/completion/completers"
	"github.com/atinylittleshell/gshcomp/internal/config"
	wctx "github.com/atinylittleshell/gshcomp/internal/context"
	"github.com/atinylittleshell/gshcomp/internal/core"
	"github.com/atinylittleshell/gshcomp/internal/history"
	"github.com/atinylittleshell/gshcomp/internal/learning"
	"github.com/atinylittleshell/gshcomp/internal/predict"
	"github.com/atinylittleshell/gshcomp/internal/semantic"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type appOptions struct {
	Debug bool
	// Dir replaces the process working directory for context analysis and
	// file listing.
	Dir string
}

// app holds every long-lived component of one CLI invocation.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	history   *history.HistoryManager
	catalog   *catalog.Catalog
	predictor *predict.SequencePredictor
	profile   *learning.Profile
	analyzer  *wctx.Analyzer
	engine    *completion.Engine
}

func newApp(opts appOptions) (*app, error) {
	cfg, err := config.NewLoader(nil).LoadFromFile(config.ResolvePath(core.ConfigFile()))
	if err != nil {
		return nil, err
	}

	logger, err := initializeLogger(cfg, opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	historyManager, err := history.NewHistoryManager(core.HistoryFile())
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to initialize history manager: %w", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		historyManager.Close()
		logger.Sync()
		return nil, fmt.Errorf("failed to load command catalog: %w", err)
	}

	predictor := predict.NewSequencePredictor(logger)
	if err := predictor.Load(core.SequenceFile()); err != nil {
		logger.Warn("failed to load sequence data", zap.Error(err))
	}
	profile := learning.NewProfile(logger)
	if err := profile.Load(core.ProfileFile()); err != nil {
		logger.Warn("failed to load profile", zap.Error(err))
	}

	analyzerConfig := wctx.AnalyzerConfig{
		CacheTTL: cfg.ContextTTL(),
		Logger:   logger,
	}
	getwd := func() string {
		wd, _ := os.Getwd()
		return wd
	}
	if opts.Dir != "" {
		dir := opts.Dir
		analyzerConfig.Getwd = func() (string, error) { return dir, nil }
		getwd = func() string { return dir }
	}
	analyzer := wctx.NewAnalyzer(analyzerConfig)

	shellFiles := lo.Map(cfg.HistoryFiles, func(path string, _ int) string {
		return core.ExpandHome(path)
	})
	historySource := completers.NewHistorySource(
		cfg.HistoryLimit, logger, historyManager, history.NewShellHistory(shellFiles...))

	var recent []string
	if entries, err := historyManager.GetRecentEntries("", completion.RecentCapacity); err != nil {
		logger.Warn("failed to read recent history", zap.Error(err))
	} else {
		recent = commandsOf(entries)
	}

	matcher := semantic.NewMatcher()
	engine := completion.NewEngine(completion.Options{
		Catalog: cat,
		Sources: completion.Sources{
			Intent:   completers.NewIntentSource(matcher),
			Sequence: completers.NewSequenceSource(predictor, matcher),
			Context:  completers.NewContextSource(nil),
			Personal: completers.NewPersonalSource(profile),
			Commands: completers.NewCommandSource(cat, nil),
			History:  historySource,
			Env:      completers.NewEnvSource(historySource),
			Args:     completers.NewArgsSource(cat),
			Files:    completers.NewFileSource(getwd),
		},
		Context:      analyzer,
		Personalizer: profile,
		Recorders:    []completion.Recorder{predictor, profile},
		Recent:       recent,
		MaxResults:   cfg.MaxResults,
		SourceLimit:  cfg.SourceLimit,
		Logger:       logger,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		history:   historyManager,
		catalog:   cat,
		predictor: predictor,
		profile:   profile,
		analyzer:  analyzer,
		engine:    engine,
	}, nil
}

func initializeLogger(cfg *config.Config, debug bool) (*zap.Logger, error) {
	logLevel := cfg.ZapLevel()
	if debug {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}
	loggerConfig.ErrorOutputPaths = []string{
		core.LogFile(),
	}

	return loggerConfig.Build()
}

// learnFromHistory feeds the stored history to the sequence predictor. The
// learned weights only live for this invocation.
func (a *app) learnFromHistory() {
	entries, err := a.history.GetRecentEntries("", a.cfg.HistoryLimit)
	if err != nil {
		a.logger.Warn("failed to read history", zap.Error(err))
		return
	}
	a.predictor.LearnFromHistory(commandsOf(entries))
}

// record stores an executed command and persists what was learned from it.
func (a *app) record(command, dir string, exitCode int) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return errors.New("command must not be empty")
	}

	entry, err := a.history.StartCommand(command, dir)
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}
	if _, err := a.history.FinishCommand(entry, exitCode); err != nil {
		return fmt.Errorf("failed to record exit code: %w", err)
	}

	a.engine.RecordCommand(command)

	if err := a.predictor.Save(core.SequenceFile()); err != nil {
		return err
	}
	return a.profile.Save(core.ProfileFile())
}

func (a *app) Close() {
	if err := a.history.Close(); err != nil {
		a.logger.Warn("failed to close history", zap.Error(err))
	}
	a.logger.Sync() // Flush any buffered log entries
}

func commandsOf(entries []history.HistoryEntry) []string {
	return lo.Map(entries, func(entry history.HistoryEntry, _ int) string {
		return entry.Command
	})
}
