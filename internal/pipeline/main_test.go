package pipeline

import (
	"os"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/haatos/pipeline-composer/internal/predefined"
)

func TestMain(m *testing.M) {
	restore := predefined.Use(predefined.MapResolver{
		"CI_PROJECT_DIR":     "/builds/group/project",
		"CI_PIPELINE_ID":     "100",
		"CI_COMMIT_REF_SLUG": "main",
	})
	code := m.Run()
	restore()
	os.Exit(code)
}

// valueOf returns the value of key in ms, or nil.
func valueOf(ms yaml.MapSlice, key string) any {
	for _, item := range ms {
		if item.Key == key {
			return item.Value
		}
	}
	return nil
}

func keysOf(ms yaml.MapSlice) []string {
	keys := make([]string, 0, len(ms))
	for _, item := range ms {
		keys = append(keys, item.Key.(string))
	}
	return keys
}
