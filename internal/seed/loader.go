package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/patient-table/internal/model"
)

//go:embed patients.yaml
var defaultDataset []byte

type dataset struct {
	Patients []model.Patient `yaml:"patients"`
}

// Loader supplies the initial patient records. It stands in for a remote
// fetch: Latency is waited out before the data is returned.
type Loader struct {
	Path    string
	Latency time.Duration
}

// Load reads the dataset at Path, or the embedded dataset when Path is empty.
func (l Loader) Load(ctx context.Context) ([]model.Patient, error) {
	if l.Latency > 0 {
		timer := time.NewTimer(l.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("seed load cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	raw := defaultDataset
	if l.Path != "" {
		data, err := os.ReadFile(l.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
		raw = data
	}

	return Parse(raw)
}

// Parse decodes a YAML dataset and checks that every record has a unique id.
func Parse(raw []byte) ([]model.Patient, error) {
	var ds dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed dataset: %w", err)
	}

	seen := make(map[string]int, len(ds.Patients))
	for i, p := range ds.Patients {
		if p.ID == "" {
			return nil, fmt.Errorf("seed record %d has no id", i)
		}
		if prev, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("seed records %d and %d share id %q", prev, i, p.ID)
		}
		seen[p.ID] = i
	}

	if ds.Patients == nil {
		return []model.Patient{}, nil
	}
	return ds.Patients, nil
}
