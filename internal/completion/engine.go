package completion

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	wctx "github.com/atinylittleshell/gshcomp/internal/context"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// DefaultMaxResults bounds the final list.
	DefaultMaxResults = 20
	// DefaultSourceLimit bounds what a single source may contribute.
	DefaultSourceLimit = 50

	fileCommandBonus = 20
)

// fileCommands operate primarily on paths, so file candidates take priority.
var fileCommands = map[string]bool{
	"touch": true, "cat": true, "less": true, "head": true, "tail": true, "more": true, "bat": true,
	"ls": true, "cd": true, "cp": true, "mv": true, "rm": true, "mkdir": true, "rmdir": true,
	"chmod": true, "chown": true, "grep": true, "find": true, "locate": true,
	"vim": true, "vi": true, "nano": true, "emacs": true, "code": true,
	"tar": true, "zip": true, "unzip": true, "gzip": true, "gunzip": true,
	"python": true, "python3": true, "node": true, "bash": true, "sh": true,
}

// IsFileCommand reports whether name primarily takes file arguments.
func IsFileCommand(name string) bool {
	return fileCommands[name]
}

// LooksLikePath reports whether word is already shaped like a path.
func LooksLikePath(word string) bool {
	return strings.HasPrefix(word, "/") ||
		strings.HasPrefix(word, ".") ||
		strings.HasPrefix(word, "~") ||
		strings.Contains(word, "/")
}

// Options configures an Engine.
type Options struct {
	Catalog      SubcommandCatalog
	Sources      Sources
	Context      ContextProvider
	Personalizer Personalizer
	Recorders    []Recorder

	// Recent seeds the recent-command buffer, oldest first.
	Recent []string

	MaxResults  int
	SourceLimit int
	Logger      *zap.Logger
}

// Engine is the completion orchestrator.
type Engine struct {
	parser       *Parser
	sources      Sources
	context      ContextProvider
	personalizer Personalizer
	recorders    []Recorder
	maxResults   int
	sourceLimit  int
	logger       *zap.Logger

	mu     sync.RWMutex
	recent *recentBuffer
}

// NewEngine creates a new Engine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 || maxResults > DefaultMaxResults {
		maxResults = DefaultMaxResults
	}
	sourceLimit := opts.SourceLimit
	if sourceLimit <= 0 {
		sourceLimit = DefaultSourceLimit
	}

	recent := newRecentBuffer(RecentCapacity)
	for _, command := range opts.Recent {
		if command = strings.TrimSpace(command); command != "" {
			recent.push(command)
		}
	}

	return &Engine{
		parser:       NewParser(opts.Catalog),
		sources:      opts.Sources,
		context:      opts.Context,
		personalizer: opts.Personalizer,
		recorders:    opts.Recorders,
		maxResults:   maxResults,
		sourceLimit:  sourceLimit,
		logger:       logger,
		recent:       recent,
	}
}

// Parse exposes the engine's parser.
func (e *Engine) Parse(line string, cursor int) ParsedCommand {
	return e.parser.Parse(line, cursor)
}

// RecentCommands returns the remembered commands, oldest first.
func (e *Engine) RecentCommands() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recent.snapshot()
}

// Complete returns at most MaxResults deduplicated completions for line with
// the cursor at the given byte offset. It never fails and never mutates the
// engine's state.
func (e *Engine) Complete(line string, cursor int) []Completion {
	parsed := e.parser.Parse(line, cursor)

	e.mu.RLock()
	recent := e.recent.snapshot()
	lastCommand := e.recent.last()
	e.mu.RUnlock()

	req := &Request{
		Parsed:      parsed,
		Work:        e.analyze(recent),
		LastCommand: lastCommand,
		Recent:      recent,
	}
	if req.LastCommand == "" {
		req.LastCommand = e.lastFromHistory()
	}

	var candidates []Completion
	if parsed.IsCommandPosition() {
		candidates = e.commandCandidates(req)
	} else {
		candidates = e.argumentCandidates(req)
	}

	return e.finalize(candidates, req)
}

func (e *Engine) commandCandidates(req *Request) []Completion {
	var out []Completion
	word := req.Word()

	if word != "" {
		out = append(out, e.query(e.sources.Intent, req)...)
	}
	out = append(out, e.query(e.sources.Sequence, req)...)
	out = append(out, e.query(e.sources.Context, req)...)
	out = append(out, e.query(e.sources.Personal, req)...)
	out = append(out, e.query(e.sources.Commands, req)...)
	if word != "" {
		out = append(out, e.query(e.sources.History, req)...)
	}

	if e.sources.Intent != nil && e.looksLikeIntent(word) {
		present := lo.SliceToMap(out, func(c Completion) (string, bool) {
			return c.Text, true
		})
		compat := e.call("intent-compat", func() ([]Completion, error) {
			return e.sources.Intent.CompleteCompat(req)
		})
		for _, c := range compat {
			if !present[c.Text] {
				present[c.Text] = true
				out = append(out, c)
			}
		}
	}

	return out
}

func (e *Engine) argumentCandidates(req *Request) []Completion {
	var out []Completion
	parsed := req.Parsed
	isFileCommand := IsFileCommand(parsed.Command)

	if parsed.Command == "export" {
		out = append(out, e.query(e.sources.Env, req)...)
	}

	if !isFileCommand || parsed.IsOption {
		out = append(out, e.query(e.sources.Args, req)...)
	}

	hasSubcommands := lo.ContainsBy(out, func(c Completion) bool {
		return c.Kind == KindSubcommand
	})
	if isFileCommand || !hasSubcommands || LooksLikePath(parsed.CurrentWord) {
		files := e.query(e.sources.Files, req)
		if isFileCommand {
			for i := range files {
				files[i].Score += fileCommandBonus
			}
		}
		out = append(out, files...)
	}

	return out
}

// finalize ranks, personalizes, deduplicates and truncates.
func (e *Engine) finalize(candidates []Completion, req *Request) []Completion {
	word := req.Word()
	if word != "" {
		ranked := make([]Completion, 0, len(candidates))
		for _, c := range candidates {
			m, ok := Rank(c.Text, word)
			if !ok {
				continue
			}
			c.Score = m.Score
			c.MatchIndices = m.Indices
			ranked = append(ranked, c)
		}
		candidates = ranked
	}

	// First occurrence in merge order wins; sorting after dedup gives the
	// same survivors as deduplicating the sorted list by merge position.
	candidates = lo.UniqBy(candidates, func(c Completion) string {
		return c.Text
	})

	if e.personalizer != nil {
		for i := range candidates {
			candidates[i].Score += e.boost(candidates[i].Text, req.Work)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > e.maxResults {
		candidates = candidates[:e.maxResults]
	}
	if candidates == nil {
		candidates = []Completion{}
	}
	return candidates
}

// RecordCommand remembers an executed command and lets recorders learn from
// it. Empty commands are ignored.
func (e *Engine) RecordCommand(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}

	e.mu.Lock()
	previous := e.recent.last()
	e.recent.push(command)
	recent := e.recent.snapshot()
	e.mu.Unlock()

	event := RecordEvent{
		Previous: previous,
		Command:  command,
		Work:     e.analyze(recent),
	}
	for _, recorder := range e.recorders {
		if err := e.record(recorder, event); err != nil {
			e.logger.Debug("recorder failed", zap.Error(err))
		}
	}
}

func (e *Engine) record(recorder Recorder, event RecordEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recorder panicked: %v", r)
		}
	}()
	return recorder.Record(event)
}

// query calls a source, absorbing errors and panics and capping its output.
func (e *Engine) query(source Source, req *Request) []Completion {
	if source == nil {
		return nil
	}
	return e.call(source.Name(), func() ([]Completion, error) {
		return source.Complete(req)
	})
}

func (e *Engine) call(name string, fn func() ([]Completion, error)) (out []Completion) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("completion source panicked",
				zap.String("source", name), zap.Any("panic", r))
			out = nil
		}
	}()

	results, err := fn()
	if err != nil {
		e.logger.Debug("completion source failed", zap.String("source", name), zap.Error(err))
		return nil
	}
	if len(results) > e.sourceLimit {
		results = results[:e.sourceLimit]
	}
	return results
}

func (e *Engine) analyze(recent []string) (work *wctx.WorkContext) {
	if e.context == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("context analysis panicked", zap.Any("panic", r))
			work = nil
		}
	}()
	work, err := e.context.Analyze(recent)
	if err != nil {
		e.logger.Debug("context analysis failed", zap.Error(err))
		return nil
	}
	return work
}

func (e *Engine) boost(text string, work *wctx.WorkContext) (offset int) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("personalizer panicked", zap.Any("panic", r))
			offset = 0
		}
	}()
	return max(0, e.personalizer.Boost(text, work))
}

func (e *Engine) looksLikeIntent(word string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return word != "" && e.sources.Intent.LooksLikeIntent(word)
}

func (e *Engine) lastFromHistory() (last string) {
	provider, ok := e.sources.History.(LastCommandProvider)
	if !ok {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			last = ""
		}
	}()
	return provider.LastCommand()
}
