// Package completers holds the candidate sources consulted by the completion
// engine. Each type implements completion.Source.
package completers

import (
	"strings"

	"github.com/atinylittleshell/gshcomp/internal/completion"
)

var (
	_ completion.Source              = (*CommandSource)(nil)
	_ completion.Source              = (*ArgsSource)(nil)
	_ completion.Source              = (*FileSource)(nil)
	_ completion.Source              = (*HistorySource)(nil)
	_ completion.Source              = (*EnvSource)(nil)
	_ completion.Source              = (*SequenceSource)(nil)
	_ completion.Source              = (*ContextSource)(nil)
	_ completion.Source              = (*PersonalSource)(nil)
	_ completion.IntentSource        = (*IntentSource)(nil)
	_ completion.LastCommandProvider = (*HistorySource)(nil)
)

// hasPrefixFold reports whether s starts with prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// firstWord returns the program part of a command line.
func firstWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// banded turns texts into completions scored band-i, in order.
func banded(texts []string, band int, kind completion.Kind, describe func(string) string) []completion.Completion {
	out := make([]completion.Completion, 0, len(texts))
	for i, text := range texts {
		out = append(out, completion.Completion{
			Text:        text,
			Description: describe(text),
			Score:       band - i,
			Kind:        kind,
		})
	}
	return out
}
