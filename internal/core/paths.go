package core

import (
	"os"
	"path/filepath"
)

// HomeEnvVar overrides the data directory when set.
const HomeEnvVar = "GSHCOMP_HOME"

type Paths struct {
	HomeDir      string
	DataDir      string
	LogFile      string
	HistoryFile  string
	ProfileFile  string
	SequenceFile string
	ConfigFile   string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := os.Getenv(HomeEnvVar)
		if dataDir == "" {
			dataDir = filepath.Join(homeDir, ".gshcomp")
		}

		defaultPaths = &Paths{
			HomeDir:      homeDir,
			DataDir:      dataDir,
			LogFile:      filepath.Join(dataDir, "gshcomp.log"),
			HistoryFile:  filepath.Join(dataDir, "history.db"),
			ProfileFile:  filepath.Join(dataDir, "profile.msgpack"),
			SequenceFile: filepath.Join(dataDir, "sequences.msgpack"),
			ConfigFile:   filepath.Join(dataDir, "config.toml"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func HistoryFile() string {
	ensureDefaultPaths()
	return defaultPaths.HistoryFile
}

func ProfileFile() string {
	ensureDefaultPaths()
	return defaultPaths.ProfileFile
}

func SequenceFile() string {
	ensureDefaultPaths()
	return defaultPaths.SequenceFile
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return HomeDir()
	}
	if len(path) >= 2 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(HomeDir(), path[2:])
	}
	return path
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
