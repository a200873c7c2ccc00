package completion

import (
	wctx "github.com/atinylittleshell/gshcomp/internal/context"
)

// Request is what a Source sees for a single completion call.
type Request struct {
	Parsed ParsedCommand
	// Work is the analyzed working context; nil when analysis failed.
	Work *wctx.WorkContext
	// LastCommand is the most recently executed command, if known.
	LastCommand string
	// Recent holds recently executed commands, oldest first.
	Recent []string
}

// Word returns the in-progress token.
func (r *Request) Word() string {
	return r.Parsed.CurrentWord
}

// Cwd returns the working directory from Work, or "".
func (r *Request) Cwd() string {
	if r.Work == nil {
		return ""
	}
	return r.Work.Cwd
}

// Source produces candidates. Errors and panics are absorbed by the engine
// and treated as an empty result.
type Source interface {
	Name() string
	Complete(req *Request) ([]Completion, error)
}

// IntentSource is a Source that also understands natural-language phrases.
type IntentSource interface {
	Source
	// LooksLikeIntent reports whether word reads like a phrase rather than a
	// command name.
	LooksLikeIntent(word string) bool
	// CompleteCompat returns plain intent-derived commands for the
	// compatibility pass.
	CompleteCompat(req *Request) ([]Completion, error)
}

// LastCommandProvider supplies the last executed command when the engine has
// not recorded one itself.
type LastCommandProvider interface {
	LastCommand() string
}

// ContextProvider analyzes the current working context.
type ContextProvider interface {
	Analyze(recent []string) (*wctx.WorkContext, error)
}

// Personalizer returns a bounded, non-negative score offset for text.
type Personalizer interface {
	Boost(text string, work *wctx.WorkContext) int
}

// RecordEvent describes one executed command.
type RecordEvent struct {
	Previous string
	Command  string
	Work     *wctx.WorkContext
}

// Recorder learns from executed commands.
type Recorder interface {
	Record(event RecordEvent) error
}

// Sources are the candidate sources, in the order they are consulted.
// Nil entries are skipped.
type Sources struct {
	// Command position.
	Intent   IntentSource
	Sequence Source
	Context  Source
	Personal Source
	Commands Source
	History  Source

	// Argument position.
	Env   Source
	Args  Source
	Files Source
}
