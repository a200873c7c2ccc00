package completers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/atinylittleshell/gshcomp/internal/core"
	"github.com/dustin/go-humanize"
)

// FileSource lists the directory implied by the current word.
type FileSource struct {
	getwd func() string
}

// NewFileSource creates a FileSource. getwd is used when the request carries
// no working directory; it defaults to os.Getwd.
func NewFileSource(getwd func() string) *FileSource {
	if getwd == nil {
		getwd = func() string {
			wd, _ := os.Getwd()
			return wd
		}
	}
	return &FileSource{getwd: getwd}
}

func (f *FileSource) Name() string { return "files" }

func (f *FileSource) Complete(req *completion.Request) ([]completion.Completion, error) {
	cwd := req.Cwd()
	if cwd == "" {
		cwd = f.getwd()
	}
	return listPath(req.Word(), cwd)
}

// listPath splits word into the typed directory part and a name prefix, and
// lists matching entries. Texts keep the directory part as typed.
func listPath(word, cwd string) ([]completion.Completion, error) {
	dirPart, namePrefix := "", word
	if i := strings.LastIndex(word, "/"); i >= 0 {
		dirPart, namePrefix = word[:i+1], word[i+1:]
	} else if word == "~" {
		dirPart, namePrefix = "~/", ""
	}

	dir := cwd
	if dirPart != "" {
		dir = core.ExpandHome(strings.TrimSuffix(dirPart, "/"))
		if dirPart == "/" {
			dir = "/"
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
	}

	entries, err := osReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []completion.Completion
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(namePrefix, ".") {
			continue
		}
		if !strings.HasPrefix(name, namePrefix) {
			continue
		}

		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if info.IsDir() {
			out = append(out, completion.Completion{
				Text:        dirPart + name + "/",
				Description: "directory",
				Score:       completion.BandDirectory,
				Kind:        completion.KindDirectory,
			})
			continue
		}
		out = append(out, completion.Completion{
			Text:        dirPart + name,
			Description: fileType(name) + ", " + humanize.Bytes(uint64(info.Size())),
			Score:       completion.BandFile,
			Kind:        completion.KindFile,
		})
	}
	return out, nil
}

var fileTypes = map[string]string{
	"txt": "text file", "md": "markdown file", "rs": "rust source", "py": "python script",
	"js": "javascript file", "ts": "typescript file", "c": "c source", "h": "c header",
	"cpp": "c++ source", "hpp": "c++ header", "cc": "c++ source", "go": "go source",
	"java": "java source", "sh": "shell script", "bash": "shell script", "json": "json file",
	"yaml": "yaml file", "yml": "yaml file", "toml": "toml file", "xml": "xml file",
	"html": "html file", "htm": "html file", "css": "css file", "sql": "sql file",
	"log": "log file", "tar": "archive", "gz": "archive", "zip": "archive", "7z": "archive",
	"rar": "archive", "pdf": "pdf document", "doc": "word document", "docx": "word document",
	"xls": "spreadsheet", "xlsx": "spreadsheet", "png": "image", "jpg": "image",
	"jpeg": "image", "gif": "image", "svg": "image", "mp3": "audio", "wav": "audio",
	"flac": "audio", "mp4": "video", "mkv": "video", "avi": "video",
}

func fileType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if t, ok := fileTypes[ext]; ok {
		return t
	}
	return "file"
}
