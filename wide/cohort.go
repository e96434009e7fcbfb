package wide

import (
	"math/rand"
	"time"

	"clifgo/clif"
)

// CohortMode selects how the hospitalization cohort for one Build call is
// determined, per §4.1 Inputs: exactly one of explicit, sample, or all.
type CohortMode int

const (
	CohortExplicit CohortMode = iota
	CohortSample
	CohortAll
)

// maxSampleSize caps the random-sample cohort mode.
const maxSampleSize = 20

// Cohort configures cohort resolution (§4.1 step 1).
type Cohort struct {
	Mode CohortMode
	// IDs is the explicit hospitalization_id list for CohortExplicit.
	IDs []string
	// SampleSize is the draw count for CohortSample, capped at 20.
	SampleSize int
	// Rand, if set, drives CohortSample's draw — tests supply a seeded
	// source for determinism; a nil Rand falls back to a fresh one.
	Rand *rand.Rand
}

// resolve computes cohort_ids from the loaded hospitalization table.
func (c Cohort) resolve(hosp *clif.Table) []string {
	switch c.Mode {
	case CohortExplicit:
		return append([]string{}, c.IDs...)
	case CohortSample:
		all := distinctHospIDs(hosp)
		n := c.SampleSize
		if n <= 0 || n > maxSampleSize {
			n = maxSampleSize
		}
		if n > len(all) {
			n = len(all)
		}
		r := c.Rand
		if r == nil {
			r = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		shuffled := append([]string{}, all...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		return shuffled[:n]
	default: // CohortAll
		return distinctHospIDs(hosp)
	}
}

func distinctHospIDs(hosp *clif.Table) []string {
	seen := map[string]bool{}
	var out []string
	for _, row := range hosp.Rows {
		id := row.Get("hospitalization_id").AsString()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// filterByHospID returns a copy of t containing only rows whose
// hospitalization_id is in ids. t is returned unmodified (sharing rows) if
// it has no hospitalization_id column at all (e.g. the patient table, which
// is filtered indirectly via the hospitalization join instead).
func filterByHospID(t *clif.Table, ids map[string]bool) *clif.Table {
	if t == nil {
		return nil
	}
	if !t.HasColumn("hospitalization_id") {
		return t
	}
	out := clif.New(t.Name, t.Columns)
	for _, row := range t.Rows {
		if ids[row.Get("hospitalization_id").AsString()] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func idSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
