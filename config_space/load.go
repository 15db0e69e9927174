package config_space

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"booksweep/structs"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// taskFile is the document layout of a standalone task description file
type taskFile struct {
	Tasks []structs.TaskSpec `toml:"task" yaml:"tasks" json:"tasks"`
}

// LoadTasks reads task descriptions from path. The format is chosen by
// extension: .toml ([[task]] tables), .yaml/.yml or .json (a "tasks" list).
func LoadTasks(path string) ([]structs.TaskSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}

	var doc taskFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("error decoding TOML task file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error decoding YAML task file %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error decoding JSON task file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported task file extension %q: %s", ext, path)
	}

	log.Infof("loaded %d tasks from %s", len(doc.Tasks), path)
	return doc.Tasks, nil
}
