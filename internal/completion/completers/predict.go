package completers

import (
	"github.com/atinylittleshell/gshcomp/internal/completion"
	wctx "github.com/atinylittleshell/gshcomp/internal/context"
	"github.com/atinylittleshell/gshcomp/internal/semantic"
	"github.com/samber/lo"
)

// SequencePredictor predicts commands from the previous one and from the
// working directory.
type SequencePredictor interface {
	PredictNextFiltered(last, prefix string) []string
	PredictFromDir(dir string) []string
}

// SequenceSource offers commands that usually follow the last one. Once a
// word is typed it also offers intent commands starting with that word.
type SequenceSource struct {
	predictor SequencePredictor
	matcher   *semantic.Matcher
}

// NewSequenceSource creates a SequenceSource. A nil matcher uses
// semantic.NewMatcher.
func NewSequenceSource(predictor SequencePredictor, matcher *semantic.Matcher) *SequenceSource {
	if matcher == nil {
		matcher = semantic.NewMatcher()
	}
	return &SequenceSource{predictor: predictor, matcher: matcher}
}

func (s *SequenceSource) Name() string { return "sequence" }

func (s *SequenceSource) Complete(req *completion.Request) ([]completion.Completion, error) {
	word := req.Word()

	var out []completion.Completion
	if last := req.LastCommand; last != "" {
		after := firstWord(last)
		out = append(out, banded(s.predictor.PredictNextFiltered(last, word), completion.BandSequence, completion.KindCommand,
			func(string) string { return "usually follows " + after })...)
	}

	if cwd := req.Cwd(); cwd != "" {
		used := lo.Filter(s.predictor.PredictFromDir(cwd), func(name string, _ int) bool {
			return hasPrefixFold(name, word)
		})
		out = append(out, banded(used, completion.BandDirectoryPrediction, completion.KindCommand,
			func(string) string { return "used in this directory" })...)
	}

	if word != "" && req.LastCommand != "" {
		intended := lo.Filter(lo.Uniq(s.matcher.Commands(word)), func(command string, _ int) bool {
			return hasPrefixFold(command, word)
		})
		out = append(out, banded(intended, completion.BandSequenceIntent, completion.KindCommand,
			func(string) string { return "intent" })...)
	}
	return out, nil
}

// ContextSource offers commands suggested by the working context.
type ContextSource struct {
	suggest func(*wctx.WorkContext) []string
}

// NewContextSource creates a ContextSource. suggest defaults to
// context.SuggestCommands.
func NewContextSource(suggest func(*wctx.WorkContext) []string) *ContextSource {
	if suggest == nil {
		suggest = wctx.SuggestCommands
	}
	return &ContextSource{suggest: suggest}
}

func (c *ContextSource) Name() string { return "context" }

func (c *ContextSource) Complete(req *completion.Request) ([]completion.Completion, error) {
	if req.Work == nil {
		return nil, nil
	}
	suggestions := c.suggest(req.Work)
	word := req.Word()

	var out []completion.Completion
	if word == "" {
		for i, suggestion := range suggestions {
			out = append(out, completion.Completion{
				Text:        firstWord(suggestion),
				Description: "context: " + suggestion,
				Score:       completion.BandContext - i,
				Kind:        completion.KindCommand,
			})
		}
		return out, nil
	}

	// Suggestions are matched and offered by program name. The first
	// suggestion for a program describes it.
	suggested := make(map[string]string)
	var names []string
	for _, suggestion := range suggestions {
		name := firstWord(suggestion)
		if !hasPrefixFold(name, word) {
			continue
		}
		if _, ok := suggested[name]; !ok {
			suggested[name] = suggestion
			names = append(names, name)
		}
	}
	return banded(names, completion.BandContextPrediction, completion.KindCommand,
		func(name string) string { return "context: " + suggested[name] }), nil
}

// PersonalSuggester supplies commands from the personal profile.
type PersonalSuggester interface {
	Suggestions(work *wctx.WorkContext) []string
}

// PersonalSource offers commands the user habitually runs.
type PersonalSource struct {
	profile PersonalSuggester
}

func NewPersonalSource(profile PersonalSuggester) *PersonalSource {
	return &PersonalSource{profile: profile}
}

func (p *PersonalSource) Name() string { return "personal" }

func (p *PersonalSource) Complete(req *completion.Request) ([]completion.Completion, error) {
	word := req.Word()
	matching := lo.Filter(p.profile.Suggestions(req.Work), func(s string, _ int) bool {
		return hasPrefixFold(s, word)
	})
	return banded(matching, completion.BandPersonal, completion.KindCommand,
		func(string) string { return "frequently used" }), nil
}
