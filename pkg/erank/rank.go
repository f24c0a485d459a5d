// Package erank orders tone-mapping operators by their mean error.
package erank

import(
	"errors"
	"fmt"
	"sort"

	"github.com/abworrall/hdr-roundtrip/pkg/etable"
)

const OperatorColumn = "operator"

var ErrMissingOperator = errors.New("table has no 'operator' column")

type Entry struct {
	Operator  string
	MeanError float64
	N         int
}

// Rank groups rows by operator and sorts the groups by ascending mean
// error, so the best operator comes first. Equal means keep the order
// the operators were first seen in. The returned table has columns
// operator and mean_<errCol>.
func Rank(t *etable.Table, errCol string) (*etable.Table, error) {
	entries, err := Entries(t, errCol)
	if err != nil {
		return nil, err
	}
	return Table(entries, errCol), nil
}

// Table lays out already ranked entries.
func Table(entries []Entry, errCol string) *etable.Table {
	out := etable.New(OperatorColumn, "mean_" + errCol)
	for _, e := range entries {
		out.Append(e.Operator, e.MeanError)
	}
	return out
}

func Entries(t *etable.Table, errCol string) ([]Entry, error) {
	if !t.HasColumn(OperatorColumn) {
		return nil, fmt.Errorf("rank by '%s': %w", errCol, ErrMissingOperator)
	}
	ops, err := t.Strings(OperatorColumn)
	if err != nil {
		return nil, err
	}
	errs, err := t.Floats(errCol)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	idx := map[string]int{}
	entries := []Entry{}
	for i, op := range ops {
		j, exists := idx[op]
		if !exists {
			j = len(entries)
			idx[op] = j
			entries = append(entries, Entry{Operator: op})
		}
		entries[j].MeanError += errs[i]
		entries[j].N++
	}
	for i := range entries {
		entries[i].MeanError /= float64(entries[i].N)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].MeanError < entries[j].MeanError })

	return entries, nil
}
