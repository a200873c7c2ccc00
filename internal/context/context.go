// Package context analyzes the environment a command is typed in: the working
// directory, its git state and project type, the recent workflow and the time
// of day. Completion sources use the result to favor relevant commands.
package context

// ProjectType identifies the kind of project rooted in a directory.
type ProjectType string

const (
	ProjectUnknown    ProjectType = ""
	ProjectRust       ProjectType = "rust"
	ProjectPython     ProjectType = "python"
	ProjectNode       ProjectType = "node"
	ProjectGo         ProjectType = "go"
	ProjectJava       ProjectType = "java"
	ProjectDocker     ProjectType = "docker"
	ProjectKubernetes ProjectType = "kubernetes"
	ProjectTerraform  ProjectType = "terraform"
	ProjectAnsible    ProjectType = "ansible"
)

// Workflow is the activity suggested by recently executed commands.
type Workflow string

const (
	WorkflowNone        Workflow = ""
	WorkflowGit         Workflow = "git"
	WorkflowTesting     Workflow = "testing"
	WorkflowBuild       Workflow = "build"
	WorkflowDebugging   Workflow = "debugging"
	WorkflowDeployment  Workflow = "deployment"
	WorkflowDevelopment Workflow = "development"
)

// GitContext is the state of the repository containing the working directory.
type GitContext struct {
	Root        string
	Branch      string
	Uncommitted bool
	Untracked   bool
	Unpushed    bool
}

// WorkContext is a snapshot of where and when a command is being typed.
// Values are shared between callers and must be treated as read-only.
type WorkContext struct {
	Cwd            string
	Git            *GitContext
	Project        ProjectType
	Workflow       Workflow
	Hour           int
	RecentCommands []string
}

// IsGitRepo reports whether the working directory is inside a git repository.
func (w *WorkContext) IsGitRepo() bool {
	return w != nil && w.Git != nil
}

// IsMorning is 06:00-11:59.
func (w *WorkContext) IsMorning() bool {
	return w.Hour >= 6 && w.Hour < 12
}

// IsEvening is 18:00-05:59.
func (w *WorkContext) IsEvening() bool {
	return w.Hour >= 18 || w.Hour < 6
}
