package completers

import (
	"strings"

	"github.com/atinylittleshell/gshcomp/internal/catalog"
	"github.com/atinylittleshell/gshcomp/internal/completion"
)

// ArgsSource offers options, option values and subcommands from the catalog.
type ArgsSource struct {
	catalog *catalog.Catalog
}

func NewArgsSource(cat *catalog.Catalog) *ArgsSource {
	return &ArgsSource{catalog: cat}
}

func (a *ArgsSource) Name() string { return "args" }

func (a *ArgsSource) Complete(req *completion.Request) ([]completion.Completion, error) {
	if a.catalog == nil {
		return nil, nil
	}
	parsed := req.Parsed

	def, ok := a.definition(parsed)
	if !ok {
		return nil, nil
	}

	var out []completion.Completion
	if parsed.IsOption || parsed.CurrentWord == "" {
		for _, opt := range def.Options {
			if optionUsed(opt, parsed.Args) {
				continue
			}
			if opt.Short != "" {
				out = append(out, completion.Completion{
					Text:        opt.Short,
					Description: opt.Description,
					Score:       completion.BandShortOption,
					Kind:        completion.KindOption,
				})
			}
			if opt.Long != "" {
				out = append(out, completion.Completion{
					Text:        opt.Long,
					Description: opt.Description,
					Score:       completion.BandLongOption,
					Kind:        completion.KindOption,
				})
			}
		}
	}

	if parsed.PreviousWord != "" {
		if opt, ok := def.FindOption(parsed.PreviousWord); ok {
			name := opt.Long
			if name == "" {
				name = opt.Short
			}
			for _, value := range opt.Values {
				out = append(out, completion.Completion{
					Text:        value,
					Description: "value for " + name,
					Score:       completion.BandOptionValue,
					Kind:        completion.KindArgument,
				})
			}
		}
	}

	if !parsed.HasSubcommand() && parsed.CurrentWordIndex == 1 {
		subs, _ := a.catalog.GetSubcommands(parsed.Command)
		for _, sub := range subs {
			out = append(out, completion.Completion{
				Text:        sub.Name,
				Description: sub.Description,
				Score:       completion.BandSubcommand,
				Kind:        completion.KindSubcommand,
			})
		}
	}

	return out, nil
}

// definition prefers the subcommand's definition and falls back to the
// command's.
func (a *ArgsSource) definition(parsed completion.ParsedCommand) (*catalog.Command, bool) {
	if parsed.HasSubcommand() {
		if def, ok := a.catalog.GetSubcommand(parsed.Command, parsed.Subcommand); ok {
			return def, true
		}
	}
	return a.catalog.GetCommand(parsed.Command)
}

func optionUsed(opt catalog.Option, args []string) bool {
	for _, arg := range args {
		if opt.Matches(arg) || (opt.Long != "" && strings.HasPrefix(arg, opt.Long+"=")) {
			return true
		}
	}
	return false
}
