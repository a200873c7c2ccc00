package completers

import (
	"strings"
	"testing"

	"github.com/atinylittleshell/gshcomp/internal/completion"
	wctx "github.com/atinylittleshell/gshcomp/internal/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	next map[string][]string
	dirs map[string][]string
}

func (f *fakePredictor) PredictNextFiltered(last, prefix string) []string {
	var out []string
	for _, c := range f.next[firstWord(last)] {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakePredictor) PredictFromDir(dir string) []string {
	return f.dirs[dir]
}

func TestSequenceSource(t *testing.T) {
	source := NewSequenceSource(&fakePredictor{
		next: map[string][]string{"git": {"git", "make", "gh"}},
		dirs: map[string][]string{"/repo": {"go", "Make", "ls"}},
	}, nil)

	req := request(testCatalog(), "g")
	req.LastCommand = "git add ."
	req.Work = &wctx.WorkContext{Cwd: "/repo"}

	out, err := source.Complete(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "gh", "go"}, texts(out))
	assert.Equal(t, completion.BandSequence, out[0].Score)
	assert.Equal(t, completion.BandSequence-1, out[1].Score)
	assert.Equal(t, "usually follows git", out[0].Description)
	assert.Equal(t, completion.BandDirectoryPrediction, out[2].Score)

	req = request(testCatalog(), "m")
	req.Work = &wctx.WorkContext{Cwd: "/repo"}
	out, err = source.Complete(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Make"}, texts(out))
}

func TestSequenceSourceIntentAfterLastCommand(t *testing.T) {
	source := NewSequenceSource(&fakePredictor{}, nil)

	out, err := source.Complete(request(testCatalog(), "find"))
	require.NoError(t, err)
	assert.Empty(t, out, "no last command")

	req := request(testCatalog(), "find")
	req.LastCommand = "git status"
	out, err = source.Complete(req)
	require.NoError(t, err)
	require.Equal(t, []string{"find"}, texts(out))
	assert.Equal(t, completion.BandSequenceIntent, out[0].Score)
	assert.Equal(t, "intent", out[0].Description)

	req = request(testCatalog(), "")
	req.LastCommand = "git status"
	out, err = source.Complete(req)
	require.NoError(t, err)
	assert.Empty(t, out, "no word typed")
}

func TestContextSource(t *testing.T) {
	source := NewContextSource(func(*wctx.WorkContext) []string {
		return []string{"cargo build", "git status", "go test"}
	})

	out, err := source.Complete(request(testCatalog(), ""))
	require.NoError(t, err)
	assert.Empty(t, out, "no work context")

	req := request(testCatalog(), "")
	req.Work = &wctx.WorkContext{}
	out, err = source.Complete(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"cargo", "git", "go"}, texts(out))
	assert.Equal(t, completion.BandContext, out[0].Score)
	assert.Equal(t, completion.BandContext-2, out[2].Score)
	assert.Equal(t, "context: git status", out[1].Description)

	req = request(testCatalog(), "G")
	req.Work = &wctx.WorkContext{}
	out, err = source.Complete(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "go"}, texts(out))
	assert.Equal(t, completion.BandContextPrediction, out[0].Score)
	assert.Equal(t, "context: git status", out[0].Description)
}

func TestContextSourceDefaultSuggestions(t *testing.T) {
	req := request(testCatalog(), "git")
	req.Work = &wctx.WorkContext{Git: &wctx.GitContext{Unpushed: true}, Hour: 14}
	out, err := NewContextSource(nil).Complete(req)
	require.NoError(t, err)
	require.Equal(t, []string{"git"}, texts(out))
	assert.Equal(t, "context: git log", out[0].Description)
}

type fakeProfile []string

func (f fakeProfile) Suggestions(*wctx.WorkContext) []string { return f }

func TestPersonalSource(t *testing.T) {
	source := NewPersonalSource(fakeProfile{"make test", "Docker ps", "make"})

	out, err := source.Complete(request(testCatalog(), "ma"))
	require.NoError(t, err)
	assert.Equal(t, []string{"make test", "make"}, texts(out))
	assert.Equal(t, completion.BandPersonal, out[0].Score)
	assert.Equal(t, completion.BandPersonal-1, out[1].Score)

	out, err = source.Complete(request(testCatalog(), "d"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Docker ps"}, texts(out))
}
