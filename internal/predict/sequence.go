// Package predict learns which command tends to follow which, and which
// commands are used in which directory.
package predict

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/atinylittleshell/gshcomp/internal/bash"
	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	maxFollowers     = 20
	maxDirCommands   = 20
	maxPredictions   = 10
	historyWeight    = 1
	liveRecordWeight = 2
)

// Follower is a command observed after another one.
type Follower struct {
	Command string `msgpack:"command"`
	Weight  int    `msgpack:"weight"`
}

type sequenceData struct {
	Sequences map[string][]Follower `msgpack:"sequences"`
	Dirs      map[string][]string   `msgpack:"dirs"`
}

// SequencePredictor is safe for concurrent use.
type SequencePredictor struct {
	mu     sync.RWMutex
	data   sequenceData
	logger *zap.Logger
}

func NewSequencePredictor(logger *zap.Logger) *SequencePredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SequencePredictor{
		data: sequenceData{
			Sequences: map[string][]Follower{},
			Dirs:      map[string][]string{},
		},
		logger: logger,
	}
}

// Learn records that next was run right after prev.
func (p *SequencePredictor) Learn(prev, next string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.learn(prev, next, liveRecordWeight)
}

// LearnFromHistory learns every adjacent pair of a chronological history.
func (p *SequencePredictor) LearnFromHistory(history []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i+1 < len(history); i++ {
		p.learn(history[i], history[i+1], historyWeight)
	}
}

func (p *SequencePredictor) learn(prev, next string, weight int) {
	first, second := bash.CommandName(strings.TrimSpace(prev)), bash.CommandName(strings.TrimSpace(next))
	if first == "" || second == "" {
		return
	}

	followers := p.data.Sequences[first]
	found := false
	for i := range followers {
		if followers[i].Command == second {
			followers[i].Weight += weight
			found = true
			break
		}
	}
	if !found {
		followers = append(followers, Follower{Command: second, Weight: weight})
	}
	sort.SliceStable(followers, func(i, j int) bool {
		return followers[i].Weight > followers[j].Weight
	})
	if len(followers) > maxFollowers {
		followers = followers[:maxFollowers]
	}
	p.data.Sequences[first] = followers
}

// PredictNext returns up to 10 commands likely to follow last, heaviest
// first.
func (p *SequencePredictor) PredictNext(last string) []string {
	return p.PredictNextFiltered(last, "")
}

// PredictNextFiltered is PredictNext restricted to commands starting with
// prefix, ignoring case.
func (p *SequencePredictor) PredictNextFiltered(last, prefix string) []string {
	name := bash.CommandName(strings.TrimSpace(last))
	if name == "" {
		return nil
	}
	prefix = strings.ToLower(prefix)

	p.mu.RLock()
	defer p.mu.RUnlock()

	var predictions []string
	for i, follower := range p.data.Sequences[name] {
		if i == maxPredictions {
			break
		}
		if strings.HasPrefix(strings.ToLower(follower.Command), prefix) {
			predictions = append(predictions, follower.Command)
		}
	}
	return predictions
}

// RecordInDir remembers that command's program was used in dir. The most
// recently used name moves to the end.
func (p *SequencePredictor) RecordInDir(dir, command string) {
	name := bash.CommandName(strings.TrimSpace(command))
	if dir == "" || name == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	names := p.data.Dirs[dir]
	for i, existing := range names {
		if existing == name {
			names = append(names[:i], names[i+1:]...)
			break
		}
	}
	names = append(names, name)
	if len(names) > maxDirCommands {
		names = names[len(names)-maxDirCommands:]
	}
	p.data.Dirs[dir] = names
}

// PredictFromDir returns the program names used in dir, most recent first.
func (p *SequencePredictor) PredictFromDir(dir string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := p.data.Dirs[dir]
	predictions := make([]string, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		predictions = append(predictions, names[i])
	}
	return predictions
}

// Record implements completion.Recorder.
func (p *SequencePredictor) Record(event completion.RecordEvent) error {
	if event.Previous != "" {
		p.Learn(event.Previous, event.Command)
	}
	if event.Work != nil {
		p.RecordInDir(event.Work.Cwd, event.Command)
	}
	return nil
}

// Load replaces the learned data with the contents of path. A missing file
// leaves the predictor empty.
func (p *SequencePredictor) Load(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading sequence data: %w", err)
	}

	var data sequenceData
	if err := msgpack.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("error decoding sequence data: %w", err)
	}
	if data.Sequences == nil {
		data.Sequences = map[string][]Follower{}
	}
	if data.Dirs == nil {
		data.Dirs = map[string][]string{}
	}

	p.mu.Lock()
	p.data = data
	p.mu.Unlock()

	p.logger.Debug("loaded sequence data", zap.String("path", path), zap.Int("commands", len(data.Sequences)))
	return nil
}

// Save writes the learned data to path.
func (p *SequencePredictor) Save(path string) error {
	p.mu.RLock()
	raw, err := msgpack.Marshal(&p.data)
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("error encoding sequence data: %w", err)
	}
	return writeFileAtomic(path, raw)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error replacing %s: %w", path, err)
	}
	return nil
}
