package completion

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// wrapperCommands launch the command given as their argument.
var wrapperCommands = map[string]bool{
	"sudo":     true,
	"time":     true,
	"env":      true,
	"nice":     true,
	"nohup":    true,
	"strace":   true,
	"gdb":      true,
	"valgrind": true,
}

// IsWrapperCommand reports whether name is a process-launcher prefix such as sudo.
func IsWrapperCommand(name string) bool {
	return wrapperCommands[name]
}

// SubcommandCatalog reports whether a command defines subcommands.
type SubcommandCatalog interface {
	HasSubcommands(command string) bool
}

// ParsedCommand is the structured view of a line up to the cursor.
// Indices are relative to the real command, after any wrapper is elided.
type ParsedCommand struct {
	Command          string
	Subcommand       string
	Args             []string
	CurrentWord      string
	CurrentWordIndex int
	IsOption         bool
	PreviousWord     string

	// Raw token view, before elision, used for position classification.
	tokenCount int
	rawIndex   int
	firstToken string
}

// HasSubcommand reports whether a subcommand was detected.
func (p ParsedCommand) HasSubcommand() bool {
	return p.Subcommand != ""
}

// IsCommandPosition reports whether the cursor completes a program name
// rather than one of its arguments.
func (p ParsedCommand) IsCommandPosition() bool {
	switch p.tokenCount {
	case 0:
		return true
	case 1:
		return IsWrapperCommand(p.firstToken) || p.rawIndex == 0
	case 2:
		return IsWrapperCommand(p.firstToken) && p.rawIndex == 1
	default:
		return p.rawIndex == 0
	}
}

// Parser turns a (line, cursor) pair into a ParsedCommand.
type Parser struct {
	catalog SubcommandCatalog
}

// NewParser creates a Parser. catalog may be nil, in which case no
// subcommands are detected.
func NewParser(catalog SubcommandCatalog) *Parser {
	return &Parser{catalog: catalog}
}

// Parse never fails; out-of-range cursors are clamped and snapped back to
// the start of the rune they point into.
func (p *Parser) Parse(line string, cursor int) ParsedCommand {
	head := line[:clampCursor(line, cursor)]

	tokens := strings.Fields(head)
	endsWithSpace := head == ""
	if !endsWithSpace {
		last, _ := utf8.DecodeLastRuneInString(head)
		endsWithSpace = unicode.IsSpace(last)
	}

	completed := tokens
	currentWord := ""
	if !endsWithSpace && len(tokens) > 0 {
		completed = tokens[:len(tokens)-1]
		currentWord = tokens[len(tokens)-1]
	}

	rawIndex := len(completed)

	offset := 0
	if len(completed) >= 2 && IsWrapperCommand(completed[0]) {
		offset = 1
	}
	words := completed[offset:]

	parsed := ParsedCommand{
		CurrentWord:      currentWord,
		CurrentWordIndex: rawIndex - offset,
		IsOption:         strings.HasPrefix(currentWord, "-"),
		Args:             []string{},
		tokenCount:       len(tokens),
		rawIndex:         rawIndex,
	}
	if len(tokens) > 0 {
		parsed.firstToken = tokens[0]
	}

	if len(words) > 0 {
		parsed.Command = words[0]
		parsed.Args = append(parsed.Args, words[1:]...)
	}

	if len(words) > 1 && !strings.HasPrefix(words[1], "-") &&
		p.catalog != nil && p.catalog.HasSubcommands(parsed.Command) {
		parsed.Subcommand = words[1]
	}

	if parsed.CurrentWordIndex > 0 && len(words) > 0 {
		parsed.PreviousWord = words[len(words)-1]
	}

	return parsed
}

func clampCursor(line string, cursor int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > len(line) {
		return len(line)
	}
	for cursor > 0 && cursor < len(line) && !utf8.RuneStart(line[cursor]) {
		cursor--
	}
	return cursor
}
