package context

import (
	"os"
	"path/filepath"
)

// projectMarkers are checked in order; the first type with a present marker wins.
var projectMarkers = []struct {
	project ProjectType
	files   []string
}{
	{ProjectRust, []string{"Cargo.toml", "Cargo.lock"}},
	{ProjectPython, []string{"setup.py", "pyproject.toml", "requirements.txt", "Pipfile"}},
	{ProjectNode, []string{"package.json"}},
	{ProjectGo, []string{"go.mod", "Gopkg.toml"}},
	{ProjectJava, []string{"pom.xml", "build.gradle", "build.gradle.kts"}},
	{ProjectDocker, []string{"Dockerfile", "docker-compose.yml", "compose.yaml"}},
	{ProjectKubernetes, []string{"k8s", "kubernetes"}},
	{ProjectTerraform, []string{"terraform.tf", "main.tf", ".terraform"}},
	{ProjectAnsible, []string{"ansible.cfg", "playbook.yml"}},
}

// DetectProject returns the project type of dir based on marker files.
func DetectProject(dir string) ProjectType {
	if dir == "" {
		return ProjectUnknown
	}
	for _, marker := range projectMarkers {
		for _, name := range marker.files {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return marker.project
			}
		}
	}
	return ProjectUnknown
}
