package completers

import (
	"strings"

	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const maxHistoryMatches = 10

// CommandLister lists distinct commands, most recent first.
type CommandLister interface {
	RecentCommands(limit int) ([]string, error)
}

// HistorySource offers previously executed commands.
type HistorySource struct {
	listers []CommandLister
	limit   int
	logger  *zap.Logger
}

// NewHistorySource reads from listers in order; earlier listers count as more
// recent. limit caps how many commands are read in total.
func NewHistorySource(limit int, logger *zap.Logger, listers ...CommandLister) *HistorySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistorySource{listers: listers, limit: limit, logger: logger}
}

func (h *HistorySource) Name() string { return "history" }

// Commands merges every lister, distinct, most recent first.
func (h *HistorySource) Commands() []string {
	var all []string
	for _, lister := range h.listers {
		commands, err := lister.RecentCommands(h.limit)
		if err != nil {
			h.logger.Debug("failed to read history", zap.Error(err))
			continue
		}
		all = append(all, commands...)
	}
	all = lo.Uniq(all)
	if len(all) > h.limit {
		all = all[:h.limit]
	}
	return all
}

// LastCommander is a CommandLister that can report its most recent command
// directly.
type LastCommander interface {
	LastCommand() (string, error)
}

// LastCommand implements completion.LastCommandProvider.
func (h *HistorySource) LastCommand() string {
	for _, lister := range h.listers {
		if last := h.lastOf(lister); last != "" {
			return last
		}
	}
	return ""
}

func (h *HistorySource) lastOf(lister CommandLister) string {
	if lc, ok := lister.(LastCommander); ok {
		last, err := lc.LastCommand()
		if err != nil {
			h.logger.Debug("failed to read last command", zap.Error(err))
			return ""
		}
		return last
	}

	commands, err := lister.RecentCommands(1)
	if err != nil || len(commands) == 0 {
		return ""
	}
	return commands[0]
}

func (h *HistorySource) Complete(req *completion.Request) ([]completion.Completion, error) {
	word := req.Word()
	if word == "" {
		return nil, nil
	}

	var out []completion.Completion
	for _, command := range h.Commands() {
		if len(out) == maxHistoryMatches {
			break
		}
		if !fuzzy.MatchFold(word, command) {
			continue
		}
		i := len(out)
		score := completion.BandHistory - i
		if strings.HasPrefix(command, word) {
			score = completion.BandHistoryPrefix - i
		}
		out = append(out, completion.Completion{
			Text:        command,
			Description: "history",
			Score:       score,
			Kind:        completion.KindHistory,
		})
	}
	return out, nil
}
