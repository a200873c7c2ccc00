// Package learning keeps a personal usage profile and turns it into score
// boosts and suggestions.
package learning

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atinylittleshell/gshcomp/internal/bash"
	"github.com/atinylittleshell/gshcomp/internal/completion"
	wctx "github.com/atinylittleshell/gshcomp/internal/context"
	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	maxPerBucket    = 10
	maxPatterns     = 100
	maxSuggestions  = 10
	topFavorites    = 5
	frequencyCap    = 100
	frequencyWeight = 2
	hourBonus       = 50
	projectBonus    = 30
	MaxBoost        = frequencyCap*frequencyWeight + hourBonus + projectBonus
)

// Pattern is an observed sequence of commands.
type Pattern struct {
	Sequence  []string `msgpack:"sequence"`
	Frequency int      `msgpack:"frequency"`
	LastUsed  int64    `msgpack:"last_used"`
}

type profileData struct {
	Favorites map[string]int      `msgpack:"favorites"`
	Hours     map[int][]string    `msgpack:"hours"`
	Projects  map[string][]string `msgpack:"projects"`
	Patterns  []Pattern           `msgpack:"patterns"`
}

// Profile is safe for concurrent use.
type Profile struct {
	mu     sync.RWMutex
	data   profileData
	now    func() time.Time
	logger *zap.Logger
}

func NewProfile(logger *zap.Logger) *Profile {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profile{
		data:   emptyProfileData(),
		now:    time.Now,
		logger: logger,
	}
}

func emptyProfileData() profileData {
	return profileData{
		Favorites: map[string]int{},
		Hours:     map[int][]string{},
		Projects:  map[string][]string{},
	}
}

// Observe counts command as used in work.
func (p *Profile) Observe(command string, work *wctx.WorkContext) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.data.Favorites[command]++
	if name := bash.CommandName(command); name != "" && name != command {
		p.data.Favorites[name]++
	}

	if work == nil {
		return
	}
	p.data.Hours[work.Hour] = appendBounded(p.data.Hours[work.Hour], command)
	if work.Project != wctx.ProjectUnknown {
		key := string(work.Project)
		p.data.Projects[key] = appendBounded(p.data.Projects[key], command)
	}
}

// appendBounded adds command if absent, evicting the oldest entry past the
// bucket size.
func appendBounded(bucket []string, command string) []string {
	if slices.Contains(bucket, command) {
		return bucket
	}
	bucket = append(bucket, command)
	if len(bucket) > maxPerBucket {
		bucket = bucket[len(bucket)-maxPerBucket:]
	}
	return bucket
}

// ObservePattern counts a sequence of two or more commands.
func (p *Profile) ObservePattern(sequence ...string) {
	if len(sequence) < 2 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now().Unix()
	for i := range p.data.Patterns {
		if slices.Equal(p.data.Patterns[i].Sequence, sequence) {
			p.data.Patterns[i].Frequency++
			p.data.Patterns[i].LastUsed = now
			return
		}
	}

	p.data.Patterns = append(p.data.Patterns, Pattern{
		Sequence:  slices.Clone(sequence),
		Frequency: 1,
		LastUsed:  now,
	})
	if len(p.data.Patterns) > maxPatterns {
		sort.SliceStable(p.data.Patterns, func(i, j int) bool {
			a, b := p.data.Patterns[i], p.data.Patterns[j]
			if a.Frequency != b.Frequency {
				return a.Frequency > b.Frequency
			}
			return a.LastUsed > b.LastUsed
		})
		p.data.Patterns = p.data.Patterns[:maxPatterns]
	}
}

// Patterns returns a copy of the observed patterns.
func (p *Profile) Patterns() []Pattern {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.data.Patterns)
}

// Frequency returns how often text was observed.
func (p *Profile) Frequency(text string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Favorites[text]
}

// Boost implements completion.Personalizer. The result is in [0, MaxBoost].
func (p *Profile) Boost(text string, work *wctx.WorkContext) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	boost := min(p.data.Favorites[text], frequencyCap) * frequencyWeight
	if work == nil {
		return boost
	}
	if slices.Contains(p.data.Hours[work.Hour], text) {
		boost += hourBonus
	}
	if work.Project != wctx.ProjectUnknown && slices.Contains(p.data.Projects[string(work.Project)], text) {
		boost += projectBonus
	}
	return boost
}

// Suggestions returns up to 10 commands preferred at this hour, in this
// project type, and the top favorites.
func (p *Profile) Suggestions(work *wctx.WorkContext) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var suggestions []string
	if work != nil {
		suggestions = append(suggestions, p.data.Hours[work.Hour]...)
		if work.Project != wctx.ProjectUnknown {
			suggestions = append(suggestions, p.data.Projects[string(work.Project)]...)
		}
	}

	favorites := lo.Keys(p.data.Favorites)
	sort.Slice(favorites, func(i, j int) bool {
		a, b := p.data.Favorites[favorites[i]], p.data.Favorites[favorites[j]]
		if a != b {
			return a > b
		}
		return favorites[i] < favorites[j]
	})
	suggestions = append(suggestions, favorites[:min(topFavorites, len(favorites))]...)

	suggestions = lo.Uniq(suggestions)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// Record implements completion.Recorder.
func (p *Profile) Record(event completion.RecordEvent) error {
	p.Observe(event.Command, event.Work)
	if event.Previous != "" {
		p.ObservePattern(event.Previous, event.Command)
	}
	return nil
}

// Load replaces the profile with the contents of path. A missing file leaves
// the profile empty.
func (p *Profile) Load(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading profile: %w", err)
	}

	data := emptyProfileData()
	if err := msgpack.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("error decoding profile: %w", err)
	}
	if data.Favorites == nil {
		data.Favorites = map[string]int{}
	}
	if data.Hours == nil {
		data.Hours = map[int][]string{}
	}
	if data.Projects == nil {
		data.Projects = map[string][]string{}
	}

	p.mu.Lock()
	p.data = data
	p.mu.Unlock()

	p.logger.Debug("loaded profile", zap.String("path", path), zap.Int("favorites", len(data.Favorites)))
	return nil
}

// Save writes the profile to path.
func (p *Profile) Save(path string) error {
	p.mu.RLock()
	raw, err := msgpack.Marshal(&p.data)
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("error encoding profile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("error writing profile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error replacing profile: %w", err)
	}
	return nil
}
