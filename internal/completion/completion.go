// Package completion implements the completion engine: it parses a partially
// typed command line, decides which candidate sources to consult, and merges,
// scores, deduplicates and truncates their output deterministically.
package completion

// Kind is the closed set of completion categories.
type Kind int

const (
	KindCommand Kind = iota
	KindSubcommand
	KindOption
	KindArgument
	KindFile
	KindDirectory
	KindHistory
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindSubcommand:
		return "subcommand"
	case KindOption:
		return "option"
	case KindArgument:
		return "argument"
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindHistory:
		return "history"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Completion is a single suggested continuation.
type Completion struct {
	Text        string `json:"text"`
	Description string `json:"description"`
	Score       int    `json:"score"`
	Kind        Kind   `json:"kind"`
	// MatchIndices are strictly increasing rune offsets into Text.
	MatchIndices []int `json:"match_indices,omitempty"`
}

// Provisional score bands assigned by sources before ranking.
const (
	BandIntent              = 130
	BandIntentArgs          = 120
	BandSequence            = 120
	BandSequenceIntent      = 115
	BandContextPrediction   = 110
	BandIntentCompat        = 110
	BandDirectoryPrediction = 100
	BandEnvPath             = 100
	BandHistoryPrefix       = 95
	BandSubcommand          = 95
	BandEnvValue            = 95
	BandContext             = 90
	BandOptionValue         = 90
	BandPersonal            = 85
	BandHistory             = 85
	BandShortOption         = 85
	BandLongOption          = 80
	BandDirectory           = 80
	BandEnvName             = 80
	BandFile                = 70
	BandCatalog             = 50
)
