package patient

import (
	"cmp"
	"slices"
	"sort"
	"strconv"

	"github.com/jwalitptl/patient-table/internal/model"
)

// Sorter reorders records ascending by key, in place.
type Sorter func(records []model.Patient, key model.Field)

// StableSort orders with a three-way comparison and keeps equal values in
// their current relative order, so repeated sorts are idempotent.
func StableSort(records []model.Patient, key model.Field) {
	slices.SortStableFunc(records, func(a, b model.Patient) int {
		return compareValues(key, a.Get(key), b.Get(key))
	})
}

// LegacySort reproduces the original table ordering: a plain less-than
// test with no tie handling. Equal values may swap between calls.
func LegacySort(records []model.Patient, key model.Field) {
	sort.Slice(records, func(i, j int) bool {
		return compareValues(key, records[i].Get(key), records[j].Get(key)) < 0
	})
}

// SorterByName resolves the configured comparator name.
func SorterByName(name string) (Sorter, bool) {
	switch name {
	case "", "stable":
		return StableSort, true
	case "legacy":
		return LegacySort, true
	}
	return nil, false
}

// compareValues compares numeric columns as numbers when both sides parse,
// and everything else as plain strings.
func compareValues(key model.Field, a, b string) int {
	if key.IsNumeric() {
		x, errA := strconv.ParseFloat(a, 64)
		y, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			return cmp.Compare(x, y)
		}
	}
	return cmp.Compare(a, b)
}
