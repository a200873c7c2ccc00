// Package semantic maps natural-language phrases, in English or Chinese, to
// the commands that carry them out.
package semantic

import (
	"sort"
	"strings"
	"unicode"

	wctx "github.com/atinylittleshell/gshcomp/internal/context"
	"github.com/samber/lo"
)

const (
	maxMatches          = 5
	maxScore            = 100
	intentNameScore     = 80
	keywordScore        = 20
	similarityThreshold = 0.6
)

// Intent is a named goal with the commands that achieve it.
type Intent struct {
	Name     string
	Commands []string
	Keywords []string
}

// Match is an intent recognized in a phrase. Score is in [0, 100].
type Match struct {
	Intent   string
	Commands []string
	Score    int
	HasArgs  bool
}

var intents = []Intent{
	{"view_file", []string{"cat", "less", "head", "tail", "more", "bat"}, []string{"view", "查看", "显示", "看", "file", "文件"}},
	{"search_text", []string{"grep", "rg", "ag", "ack"}, []string{"search", "搜索", "查找", "找", "text", "文本"}},
	{"list_files", []string{"ls", "tree", "exa", "fd"}, []string{"list", "列表", "列出", "files", "文件"}},
	{"edit_file", []string{"vim", "vi", "nano", "emacs", "code"}, []string{"edit", "编辑", "修改"}},
	{"copy_file", []string{"cp", "rsync"}, []string{"copy", "复制", "拷贝"}},
	{"move_file", []string{"mv"}, []string{"move", "移动"}},
	{"delete_file", []string{"rm", "trash"}, []string{"delete", "删除", "移除"}},
	{"find_file", []string{"find", "fd", "locate"}, []string{"find", "查找", "找"}},
	{"compress", []string{"tar", "zip", "gzip", "bzip2", "xz"}, []string{"compress", "压缩", "打包"}},
	{"extract", []string{"tar", "unzip", "gunzip", "bunzip2", "unxz"}, []string{"extract", "解压", "解包"}},
	{"http_request", []string{"curl", "wget"}, []string{"http", "download", "下载", "请求"}},
	{"process_manage", []string{"ps", "top", "htop", "kill", "pkill"}, []string{"process", "进程", "kill"}},
	{"system_info", []string{"uname", "hostname", "uptime", "df", "du", "free"}, []string{"info", "信息", "system", "系统"}},
}

// commandArgs are common argument combinations per program.
var commandArgs = map[string][]string{
	"git":    {"status", "add", "commit -m", "push", "pull"},
	"docker": {"ps", "images", "run", "build"},
	"cargo":  {"build", "run", "test", "check"},
	"tail":   {"-f", "-n 100", "-F"},
	"grep":   {"-r", "-i", "-n", "-E"},
}

var intentVerbs = []string{
	"view", "show", "display", "read",
	"search", "find", "look",
	"list", "ls",
	"edit", "modify",
	"copy", "cp",
	"move", "mv",
	"delete", "remove", "rm",
}

// Matcher recognizes intents. The zero value is ready to use.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Identify returns up to five intents for phrase, best first. Equal scores
// keep table order. Each intent appears once with its best score.
func (m *Matcher) Identify(phrase string, work *wctx.WorkContext) []Match {
	input := strings.ToLower(strings.TrimSpace(phrase))
	if input == "" {
		return nil
	}

	var matches []Match
	for _, intent := range intents {
		if score := intentScore(input, intent, work); score > 0 {
			matches = append(matches, newMatch(intent.Name, intent.Commands, score))
		}
	}
	matches = append(matches, compositeMatches(input)...)
	matches = append(matches, similarityMatches(input)...)

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	matches = lo.UniqBy(matches, func(match Match) string { return match.Intent })
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

// Commands flattens Identify without context.
func (m *Matcher) Commands(phrase string) []string {
	var commands []string
	for _, match := range m.Identify(phrase, nil) {
		commands = append(commands, match.Commands...)
	}
	return commands
}

func newMatch(name string, commands []string, score int) Match {
	_, hasArgs := commandArgs[commands[0]]
	return Match{Intent: name, Commands: commands, Score: score, HasArgs: hasArgs}
}

func intentScore(input string, intent Intent, work *wctx.WorkContext) int {
	score := 0
	if strings.Contains(input, intent.Name) {
		score += intentNameScore
	}
	for _, keyword := range intent.Keywords {
		if strings.Contains(input, keyword) {
			score += keywordScore
		}
	}
	if score == 0 {
		return 0
	}
	return min(score+contextBoost(input, work), maxScore)
}

func containsAny(input string, words ...string) bool {
	return lo.SomeBy(words, func(word string) bool { return strings.Contains(input, word) })
}

func contextBoost(input string, work *wctx.WorkContext) int {
	if work == nil {
		return 0
	}

	boost := 0
	if work.IsGitRepo() {
		if containsAny(input, "提交", "commit") {
			boost += 15
		}
		if containsAny(input, "状态", "status") {
			boost += 10
		}
	}

	switch work.Project {
	case wctx.ProjectRust:
		if containsAny(input, "运行", "run", "构建", "build") {
			boost += 10
		}
	case wctx.ProjectPython:
		if containsAny(input, "运行", "run", "测试", "test") {
			boost += 10
		}
	case wctx.ProjectNode:
		if containsAny(input, "安装", "install", "运行", "run") {
			boost += 10
		}
	}
	return boost
}

func compositeMatches(input string) []Match {
	var matches []Match
	if containsAny(input, "日志", "log") {
		switch {
		case containsAny(input, "实时", "follow", "tail"):
			matches = append(matches, Match{Intent: "view_log_realtime", Commands: []string{"tail -f", "journalctl -f"}, Score: 90, HasArgs: true})
		case containsAny(input, "最近", "recent", "last"):
			matches = append(matches, Match{Intent: "view_log_recent", Commands: []string{"tail -n 100", "journalctl -n 100"}, Score: 85, HasArgs: true})
		}
	}
	if containsAny(input, "查找", "find") && containsAny(input, "内容", "content", "文本", "text") {
		matches = append(matches, Match{Intent: "find_and_grep", Commands: []string{"find . -type f -exec grep -l"}, Score: 80, HasArgs: true})
	}
	return matches
}

// similarityMatches is the fallback for phrases close to a keyword. Single
// characters are too ambiguous to take part.
func similarityMatches(input string) []Match {
	if len([]rune(input)) < 2 {
		return nil
	}

	var matches []Match
	for _, intent := range intents {
		for _, keyword := range intent.Keywords {
			if similarity := Similarity(input, keyword); similarity > similarityThreshold {
				matches = append(matches, newMatch(intent.Name, intent.Commands, int(similarity*100)))
				break
			}
		}
	}
	return matches
}

// Similarity is 1 for equal strings, 0.8 when one contains the other, and
// otherwise the share of equal runes at equal positions over the shorter
// length.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb))
	same := 0
	for i := 0; i < n; i++ {
		if ra[i] == rb[i] {
			same++
		}
	}
	return float64(same) / float64(n)
}

// InferArgs expands a match into full command lines using common arguments
// and the work context.
func (m *Matcher) InferArgs(match Match, work *wctx.WorkContext) []string {
	var suggestions []string
	for _, command := range match.Commands {
		for _, arg := range commandArgs[command] {
			suggestions = append(suggestions, command+" "+arg)
		}
	}
	if work == nil {
		return suggestions
	}

	switch work.Project {
	case wctx.ProjectRust:
		if lo.Contains(match.Commands, "cargo") {
			suggestions = append(suggestions, "cargo build", "cargo run")
		}
	case wctx.ProjectPython:
		if lo.SomeBy(match.Commands, func(c string) bool { return strings.Contains(c, "python") }) {
			suggestions = append(suggestions, "python -m pytest")
		}
	case wctx.ProjectNode:
		if lo.Contains(match.Commands, "npm") {
			suggestions = append(suggestions, "npm install", "npm run")
		}
	}
	return suggestions
}

// LooksLikeIntent reports whether input reads like a phrase: it contains
// CJK ideographs or a common action verb.
func (m *Matcher) LooksLikeIntent(input string) bool {
	if len(input) < 2 {
		return false
	}
	for _, r := range input {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	lower := strings.ToLower(input)
	return containsAny(lower, intentVerbs...)
}
