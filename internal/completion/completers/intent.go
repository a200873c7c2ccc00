package completers

import (
	"fmt"

	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/atinylittleshell/gshcomp/internal/semantic"
)

// IntentSource turns natural-language phrases into commands.
type IntentSource struct {
	matcher *semantic.Matcher
}

func NewIntentSource(matcher *semantic.Matcher) *IntentSource {
	if matcher == nil {
		matcher = semantic.NewMatcher()
	}
	return &IntentSource{matcher: matcher}
}

func (s *IntentSource) Name() string { return "intent" }

func (s *IntentSource) Complete(req *completion.Request) ([]completion.Completion, error) {
	word := req.Word()
	if word == "" {
		return nil, nil
	}

	var out []completion.Completion
	for i, match := range s.matcher.Identify(word, req.Work) {
		for _, command := range match.Commands {
			out = append(out, completion.Completion{
				Text:        command,
				Description: fmt.Sprintf("intent: %s (score %d)", match.Intent, match.Score),
				Score:       completion.BandIntent + match.Score - i,
				Kind:        completion.KindCommand,
			})
		}
		if match.HasArgs {
			out = append(out, banded(s.matcher.InferArgs(match, req.Work), completion.BandIntentArgs, completion.KindCommand,
				func(string) string { return "suggested command" })...)
		}
	}
	return out, nil
}

func (s *IntentSource) LooksLikeIntent(word string) bool {
	return s.matcher.LooksLikeIntent(word)
}

func (s *IntentSource) CompleteCompat(req *completion.Request) ([]completion.Completion, error) {
	return banded(s.matcher.Commands(req.Word()), completion.BandIntentCompat, completion.KindCommand,
		func(command string) string { return "intent: " + command }), nil
}
