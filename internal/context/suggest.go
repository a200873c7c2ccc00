package context

import (
	"slices"
)

const maxSuggestions = 10

var projectSuggestions = map[ProjectType][]string{
	ProjectRust:       {"cargo build", "cargo run", "cargo test"},
	ProjectPython:     {"python", "pip install", "python -m pytest"},
	ProjectNode:       {"npm install", "npm run", "node"},
	ProjectGo:         {"go build", "go run", "go test"},
	ProjectJava:       {"mvn", "gradle"},
	ProjectDocker:     {"docker build", "docker-compose up"},
	ProjectKubernetes: {"kubectl", "helm"},
	ProjectTerraform:  {"terraform"},
	ProjectAnsible:    {"ansible-playbook"},
}

var workflowSuggestions = map[Workflow][]string{
	WorkflowDevelopment: {"cargo run", "python", "npm run dev"},
	WorkflowTesting:     {"cargo test", "pytest", "npm test"},
	WorkflowBuild:       {"cargo build --release", "make", "npm run build"},
	WorkflowDebugging:   {"gdb", "strace", "valgrind"},
	WorkflowDeployment:  {"docker build", "kubectl apply", "terraform apply"},
	WorkflowGit:         {"git status", "git add", "git commit"},
}

// SuggestCommands returns up to ten sorted, unique commands that fit work.
func SuggestCommands(work *WorkContext) []string {
	if work == nil {
		return nil
	}

	var suggestions []string
	if git := work.Git; git != nil {
		if git.Uncommitted {
			suggestions = append(suggestions, "git status", "git add", "git diff")
		}
		if git.Untracked {
			suggestions = append(suggestions, "git add")
		}
		if git.Unpushed {
			suggestions = append(suggestions, "git push")
		}
		suggestions = append(suggestions, "git log")
	}

	suggestions = append(suggestions, projectSuggestions[work.Project]...)
	suggestions = append(suggestions, workflowSuggestions[work.Workflow]...)

	switch {
	case work.IsMorning():
		suggestions = append(suggestions, "cargo build", "make")
	case work.IsEvening():
		suggestions = append(suggestions, "cargo test", "make clean")
	}

	slices.Sort(suggestions)
	suggestions = slices.Compact(suggestions)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
