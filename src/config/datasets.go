package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/username/mejoravivienda/backend/src/models"
)

// datasetsFile is the on-disk shape of datasets.yaml.
type datasetsFile struct {
	Datasets map[string]models.Dataset `yaml:"datasets"`
}

// LoadDatasets reads and validates the dataset registry from a YAML file.
// Environment variables in the file are expanded before parsing.
func LoadDatasets(path string) (map[string]models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read datasets config %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var file datasetsFile
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, fmt.Errorf("failed to parse datasets config %s: %w", path, err)
	}
	if len(file.Datasets) == 0 {
		return nil, fmt.Errorf("datasets config %s defines no datasets", path)
	}

	out := make(map[string]models.Dataset, len(file.Datasets))
	for name, ds := range file.Datasets {
		ds.Name = name
		if ds.TopN == 0 {
			ds.TopN = 5
		}
		if ds.DefaultSortDir == "" {
			ds.DefaultSortDir = models.SortDesc
		}
		if err := ds.Validate(); err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
		out[name] = ds
	}
	return out, nil
}

// DatasetNames returns the registry keys in stable order.
func DatasetNames(datasets map[string]models.Dataset) []string {
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
