package context

import "strings"

// workflowKeywords are checked in order against the joined recent commands.
var workflowKeywords = []struct {
	workflow Workflow
	keywords []string
}{
	{WorkflowGit, []string{"git"}},
	{WorkflowTesting, []string{"test", "pytest"}},
	{WorkflowBuild, []string{"build", "make"}},
	{WorkflowDebugging, []string{"debug", "gdb", "strace"}},
	{WorkflowDeployment, []string{"deploy", "docker", "kubectl"}},
	{WorkflowDevelopment, []string{"run", "python"}},
}

// DetectWorkflow infers the current activity from recent commands.
func DetectWorkflow(recent []string) Workflow {
	if len(recent) == 0 {
		return WorkflowNone
	}
	joined := strings.ToLower(strings.Join(recent, " "))
	for _, entry := range workflowKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(joined, keyword) {
				return entry.workflow
			}
		}
	}
	return WorkflowNone
}
