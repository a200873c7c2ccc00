package completion

import (
	"errors"
	"fmt"
	"testing"

	wctx "github.com/atinylittleshell/gshcomp/internal/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name  string
	out   []Completion
	err   error
	panic bool
	calls int
	last  *Request
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Complete(req *Request) ([]Completion, error) {
	f.calls++
	f.last = req
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]Completion(nil), f.out...), nil
}

type fakeIntent struct {
	fakeSource
	looks       bool
	compat      []Completion
	compatCalls int
}

func (f *fakeIntent) LooksLikeIntent(string) bool { return f.looks }

func (f *fakeIntent) CompleteCompat(*Request) ([]Completion, error) {
	f.compatCalls++
	return append([]Completion(nil), f.compat...), nil
}

type fakeHistory struct {
	fakeSource
	lastCommand string
}

func (f *fakeHistory) LastCommand() string { return f.lastCommand }

type fakeContext struct {
	work *wctx.WorkContext
	err  error
}

func (f *fakeContext) Analyze([]string) (*wctx.WorkContext, error) { return f.work, f.err }

type fakePersonalizer struct {
	boosts map[string]int
	panic  bool
}

func (f *fakePersonalizer) Boost(text string, _ *wctx.WorkContext) int {
	if f.panic {
		panic("boom")
	}
	return f.boosts[text]
}

type fakeRecorder struct {
	events []RecordEvent
	panic  bool
}

func (f *fakeRecorder) Record(event RecordEvent) error {
	if f.panic {
		panic("boom")
	}
	f.events = append(f.events, event)
	return nil
}

func commands(score int, texts ...string) []Completion {
	out := make([]Completion, 0, len(texts))
	for _, text := range texts {
		out = append(out, Completion{Text: text, Score: score, Kind: KindCommand})
	}
	return out
}

func resultTexts(results []Completion) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Text)
	}
	return out
}

func TestCompleteCommandPositionSources(t *testing.T) {
	intent := &fakeIntent{fakeSource: fakeSource{name: "intent"}}
	sequence := &fakeSource{name: "sequence"}
	context := &fakeSource{name: "context"}
	personal := &fakeSource{name: "personal"}
	cmds := &fakeSource{name: "commands"}
	history := &fakeHistory{fakeSource: fakeSource{name: "history"}}

	engine := NewEngine(Options{Sources: Sources{
		Intent: intent, Sequence: sequence, Context: context,
		Personal: personal, Commands: cmds, History: history,
	}})

	engine.Complete("", 0)
	assert.Equal(t, 0, intent.calls)
	assert.Equal(t, 0, history.calls)
	assert.Equal(t, 1, sequence.calls)
	assert.Equal(t, 1, context.calls)
	assert.Equal(t, 1, personal.calls)
	assert.Equal(t, 1, cmds.calls)

	engine.Complete("g", 1)
	assert.Equal(t, 1, intent.calls)
	assert.Equal(t, 1, history.calls)
	assert.Equal(t, 2, cmds.calls)

	engine.Complete("sudo gi", 7)
	assert.Equal(t, 3, cmds.calls)
}

func TestCompleteRanksAgainstWord(t *testing.T) {
	cmds := &fakeSource{name: "commands", out: commands(BandCatalog, "commit", "xyz", "com")}
	engine := NewEngine(Options{Sources: Sources{Commands: cmds}})

	results := engine.Complete("com", 3)
	require.Len(t, results, 2)
	assert.Equal(t, "com", results[0].Text)
	assert.Equal(t, 300, results[0].Score)
	assert.Equal(t, "commit", results[1].Text)
	assert.Equal(t, 294, results[1].Score)
	assert.Equal(t, []int{0, 1, 2}, results[1].MatchIndices)
}

func TestCompleteEmptyWordKeepsBands(t *testing.T) {
	sequence := &fakeSource{name: "sequence", out: commands(BandSequence, "make test")}
	cmds := &fakeSource{name: "commands", out: commands(BandCatalog, "ls")}
	engine := NewEngine(Options{Sources: Sources{Sequence: sequence, Commands: cmds}})

	results := engine.Complete("", 0)
	assert.Equal(t, []string{"make test", "ls"}, resultTexts(results))
	assert.Equal(t, BandSequence, results[0].Score)
	assert.Nil(t, results[0].MatchIndices)
}

func TestCompleteDeduplicatesFirstMerged(t *testing.T) {
	t.Run("earlier source wins description", func(t *testing.T) {
		sequence := &fakeSource{name: "sequence", out: []Completion{{Text: "make", Description: "usually follows ls", Score: BandSequence}}}
		cmds := &fakeSource{name: "commands", out: []Completion{{Text: "make", Description: "build", Score: BandCatalog}}}
		engine := NewEngine(Options{Sources: Sources{Sequence: sequence, Commands: cmds}})

		for _, line := range []string{"", "ma"} {
			results := engine.Complete(line, len(line))
			require.Len(t, results, 1, line)
			assert.Equal(t, "usually follows ls", results[0].Description)
		}
	})

	t.Run("lower score shadows later duplicate", func(t *testing.T) {
		sequence := &fakeSource{name: "sequence", out: commands(10, "a")}
		cmds := &fakeSource{name: "commands", out: commands(999, "a", "b")}
		engine := NewEngine(Options{Sources: Sources{Sequence: sequence, Commands: cmds}})

		results := engine.Complete("", 0)
		assert.Equal(t, []string{"b", "a"}, resultTexts(results))
		assert.Equal(t, 10, results[1].Score)
	})
}

func TestCompleteTruncates(t *testing.T) {
	var many []string
	for i := 0; i < 100; i++ {
		many = append(many, fmt.Sprintf("cmd%03d", i))
	}
	cmds := &fakeSource{name: "commands", out: commands(BandCatalog, many...)}

	engine := NewEngine(Options{Sources: Sources{Commands: cmds}})
	assert.Len(t, engine.Complete("cmd", 3), DefaultMaxResults)
	assert.Len(t, engine.Complete("", 0), DefaultMaxResults)

	engine = NewEngine(Options{Sources: Sources{Commands: cmds}, MaxResults: 5})
	assert.Len(t, engine.Complete("", 0), 5)

	engine = NewEngine(Options{Sources: Sources{Commands: cmds}, MaxResults: 500})
	assert.Len(t, engine.Complete("", 0), DefaultMaxResults)
}

func TestCompleteCapsEachSource(t *testing.T) {
	var many []string
	for i := 0; i < 10; i++ {
		many = append(many, fmt.Sprintf("x%d", i))
	}
	sequence := &fakeSource{name: "sequence", out: commands(BandSequence, many...)}
	cmds := &fakeSource{name: "commands", out: commands(BandCatalog, "ls")}
	engine := NewEngine(Options{Sources: Sources{Sequence: sequence, Commands: cmds}, SourceLimit: 3})

	assert.Equal(t, []string{"x0", "x1", "x2", "ls"}, resultTexts(engine.Complete("", 0)))
}

func TestCompleteAbsorbsFailingSources(t *testing.T) {
	sequence := &fakeSource{name: "sequence", err: errors.New("broken")}
	context := &fakeSource{name: "context", panic: true}
	cmds := &fakeSource{name: "commands", out: commands(BandCatalog, "ls", "lsof")}
	engine := NewEngine(Options{
		Sources: Sources{Sequence: sequence, Context: context, Commands: cmds},
		Context: &fakeContext{err: errors.New("no cwd")},
	})

	var results []Completion
	assert.NotPanics(t, func() { results = engine.Complete("ls", 2) })
	assert.Equal(t, []string{"ls", "lsof"}, resultTexts(results))
	assert.Nil(t, cmds.last.Work)
}

func TestCompleteNeverNil(t *testing.T) {
	engine := NewEngine(Options{})
	results := engine.Complete("anything", 8)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCompleteStableOrder(t *testing.T) {
	cmds := &fakeSource{name: "commands", out: commands(BandCatalog, "c", "a", "b")}
	engine := NewEngine(Options{Sources: Sources{Commands: cmds}})
	assert.Equal(t, []string{"c", "a", "b"}, resultTexts(engine.Complete("", 0)))
}

func TestCompleteIsIdempotent(t *testing.T) {
	cmds := &fakeSource{name: "commands", out: commands(BandCatalog, "git", "grep", "gzip")}
	history := &fakeHistory{fakeSource: fakeSource{name: "history", out: []Completion{{Text: "git status", Score: BandHistory, Kind: KindHistory}}}}
	engine := NewEngine(Options{
		Sources: Sources{Commands: cmds, History: history},
		Recent:  []string{"ls", "cd /tmp"},
	})

	first := engine.Complete("g", 1)
	second := engine.Complete("g", 1)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"ls", "cd /tmp"}, engine.RecentCommands())
}

func TestCompletePersonalization(t *testing.T) {
	tests := []struct {
		name         string
		personalizer *fakePersonalizer
		expected     []string
		scores       []int
	}{
		{
			name:         "boost reorders",
			personalizer: &fakePersonalizer{boosts: map[string]int{"b": 100}},
			expected:     []string{"b", "a"},
			scores:       []int{150, 50},
		},
		{
			name:         "negative offsets are ignored",
			personalizer: &fakePersonalizer{boosts: map[string]int{"a": -40}},
			expected:     []string{"a", "b"},
			scores:       []int{50, 50},
		},
		{
			name:         "panicking personalizer is ignored",
			personalizer: &fakePersonalizer{panic: true},
			expected:     []string{"a", "b"},
			scores:       []int{50, 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &fakeSource{name: "commands", out: commands(BandCatalog, "a", "b")}
			engine := NewEngine(Options{Sources: Sources{Commands: cmds}, Personalizer: tt.personalizer})

			results := engine.Complete("", 0)
			assert.Equal(t, tt.expected, resultTexts(results))
			assert.Equal(t, tt.scores, []int{results[0].Score, results[1].Score})
		})
	}
}

func TestCompleteIntentCompatPass(t *testing.T) {
	intent := &fakeIntent{
		fakeSource: fakeSource{name: "intent", out: commands(BandIntent, "find . -name")},
		looks:      true,
		compat:     commands(BandIntentCompat, "find . -name", "find . -type f"),
	}
	engine := NewEngine(Options{Sources: Sources{Intent: intent}})

	results := engine.Complete("find", 4)
	assert.Equal(t, 1, intent.compatCalls)
	assert.Equal(t, []string{"find . -name", "find . -type f"}, resultTexts(results))

	intent.looks = false
	engine.Complete("find", 4)
	assert.Equal(t, 1, intent.compatCalls)
}

func TestCompleteArgumentSources(t *testing.T) {
	subcommand := Completion{Text: "commit", Score: BandSubcommand, Kind: KindSubcommand}
	option := Completion{Text: "-j", Score: BandShortOption, Kind: KindOption}
	file := Completion{Text: "main.go", Score: BandFile, Kind: KindFile}

	tests := []struct {
		name      string
		line      string
		argsOut   []Completion
		argsCalls int
		fileCalls int
		envCalls  int
	}{
		{name: "file command skips args", line: "cat ", argsCalls: 0, fileCalls: 1},
		{name: "file command option", line: "cat -", argsOut: []Completion{option}, argsCalls: 1, fileCalls: 1},
		{name: "subcommands suppress files", line: "git ", argsOut: []Completion{subcommand}, argsCalls: 1, fileCalls: 0},
		{name: "path-like word forces files", line: "git ./", argsOut: []Completion{subcommand}, argsCalls: 1, fileCalls: 1},
		{name: "options only fall through to files", line: "make ", argsOut: []Completion{option}, argsCalls: 1, fileCalls: 1},
		{name: "export consults env", line: "export PA", argsCalls: 1, fileCalls: 1, envCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := &fakeSource{name: "args", out: tt.argsOut}
			files := &fakeSource{name: "files", out: []Completion{file}}
			env := &fakeSource{name: "env"}
			engine := NewEngine(Options{Sources: Sources{Args: args, Files: files, Env: env}})

			engine.Complete(tt.line, len(tt.line))
			assert.Equal(t, tt.argsCalls, args.calls)
			assert.Equal(t, tt.fileCalls, files.calls)
			assert.Equal(t, tt.envCalls, env.calls)
		})
	}
}

func TestCompleteFileCommandBonus(t *testing.T) {
	files := &fakeSource{name: "files", out: []Completion{{Text: "main.go", Score: BandFile, Kind: KindFile}}}
	engine := NewEngine(Options{Sources: Sources{Files: files}})

	results := engine.Complete("cat ", 4)
	require.Len(t, results, 1)
	assert.Equal(t, BandFile+fileCommandBonus, results[0].Score)

	results = engine.Complete("make ", 5)
	require.Len(t, results, 1)
	assert.Equal(t, BandFile, results[0].Score)
}

func TestCompleteRequestContext(t *testing.T) {
	work := &wctx.WorkContext{Cwd: "/tmp/project"}
	sequence := &fakeSource{name: "sequence"}
	history := &fakeHistory{fakeSource: fakeSource{name: "history"}, lastCommand: "make"}
	engine := NewEngine(Options{
		Sources: Sources{Sequence: sequence, History: history},
		Context: &fakeContext{work: work},
	})

	engine.Complete("", 0)
	require.NotNil(t, sequence.last)
	assert.Equal(t, "/tmp/project", sequence.last.Cwd())
	assert.Equal(t, "make", sequence.last.LastCommand)

	engine.RecordCommand("ls")
	engine.Complete("", 0)
	assert.Equal(t, "ls", sequence.last.LastCommand)
	assert.Equal(t, []string{"ls"}, sequence.last.Recent)
}

func TestRecordCommand(t *testing.T) {
	broken := &fakeRecorder{panic: true}
	recorder := &fakeRecorder{}
	engine := NewEngine(Options{Recorders: []Recorder{broken, recorder}})

	assert.NotPanics(t, func() {
		engine.RecordCommand("ls")
		engine.RecordCommand("   ")
		engine.RecordCommand(" cd /tmp ")
	})

	assert.Equal(t, []string{"ls", "cd /tmp"}, engine.RecentCommands())
	require.Len(t, recorder.events, 2)
	assert.Equal(t, RecordEvent{Command: "ls"}, recorder.events[0])
	assert.Equal(t, RecordEvent{Previous: "ls", Command: "cd /tmp"}, recorder.events[1])
}

func TestRecordCommandRingBuffer(t *testing.T) {
	engine := NewEngine(Options{})
	for i := 0; i < RecentCapacity+3; i++ {
		engine.RecordCommand(fmt.Sprintf("cmd%d", i))
	}
	recent := engine.RecentCommands()
	assert.Len(t, recent, RecentCapacity)
	assert.Equal(t, "cmd3", recent[0])
	assert.Equal(t, fmt.Sprintf("cmd%d", RecentCapacity+2), recent[len(recent)-1])
}

func TestIsFileCommand(t *testing.T) {
	assert.True(t, IsFileCommand("cat"))
	assert.True(t, IsFileCommand("vim"))
	assert.False(t, IsFileCommand("git"))
}

func TestLooksLikePath(t *testing.T) {
	for _, word := range []string{"/usr", "./x", "~", "src/main.go", ".."} {
		assert.True(t, LooksLikePath(word), word)
	}
	for _, word := range []string{"", "main", "-v"} {
		assert.False(t, LooksLikePath(word), word)
	}
}
