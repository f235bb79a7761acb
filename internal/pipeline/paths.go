package pipeline

import (
	"strings"

	"github.com/haatos/pipeline-composer/internal/predefined"
)

// projectPath makes path relative to the project directory. Absolute paths
// inside the project directory lose the directory prefix; all paths are
// returned with a leading "./".
func projectPath(path string) string {
	projectDir := strings.TrimSuffix(predefined.CIProjectDir(), "/")
	if projectDir != "" && (path == projectDir || strings.HasPrefix(path, projectDir+"/")) {
		path = strings.TrimPrefix(path, projectDir)
	}
	path = strings.TrimLeft(path, "/")
	if path == "" || path == "." {
		return "./"
	}
	if strings.HasPrefix(path, "./") {
		return path
	}
	return "./" + path
}

func projectPaths(paths []string) []string {
	var normalized []string
	for _, p := range paths {
		normalized = appendUnique(normalized, projectPath(p))
	}
	return normalized
}
