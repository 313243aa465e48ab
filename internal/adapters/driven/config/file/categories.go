package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jobforge/jobforge/internal/core/services"
)

// LoadCategories reads context category rules from a YAML file.
// An empty path or a missing file yields the built-in defaults, so a
// fresh checkout works without any configuration. File values override
// defaults; a categories list in the file replaces the default list
// wholesale.
func LoadCategories(path string) (services.AssemblerConfig, error) {
	cfg := services.DefaultAssemblerConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return services.AssemblerConfig{}, fmt.Errorf("reading categories file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return services.AssemblerConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, rule := range cfg.Categories {
		if rule.Name == "" {
			return services.AssemblerConfig{}, fmt.Errorf("parsing %s: category %d has no name", path, i)
		}
	}

	return cfg, nil
}
