package cli

import (
	"fmt"

	"github.com/jwalitptl/patient-table/internal/config"
	"github.com/jwalitptl/patient-table/internal/seed"
	"github.com/jwalitptl/patient-table/internal/service/patient"
	"github.com/jwalitptl/patient-table/pkg/logger"
)

// newStore builds an uninitialized store from the store section of cfg.
func newStore(cfg *config.Config, log *logger.Logger, extra ...patient.Option) (*patient.Store, error) {
	sorter, ok := patient.SorterByName(cfg.Store.SortComparator)
	if !ok {
		return nil, fmt.Errorf("unknown sort comparator %q", cfg.Store.SortComparator)
	}
	policy, ok := patient.PolicyByName(cfg.Store.CommitPolicy)
	if !ok {
		return nil, fmt.Errorf("unknown commit policy %q", cfg.Store.CommitPolicy)
	}

	opts := []patient.Option{
		patient.WithSorter(sorter),
		patient.WithCommitPolicy(policy),
		patient.WithLogger(log),
	}
	return patient.NewStore(append(opts, extra...)...), nil
}

func newLoader(cfg *config.Config) seed.Loader {
	return seed.Loader{Path: cfg.Seed.Path, Latency: cfg.Seed.Latency}
}
