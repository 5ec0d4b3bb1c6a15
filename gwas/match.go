package gwas

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"go.dedis.ch/onet/v3/log"
	"gonum.org/v1/gonum/mat"

	"github.com/otterlab/otterseq/plink"
)

// MatchResult holds the controls selected for a set of cases along with
// per-case accounting. Shortfall makes control exhaustion in unique mode
// observable; it is never an error.
type MatchResult struct {
	// Keys are the distinct matched control keys in selection order.
	Keys []string
	// PerCase holds the keys accepted for each case, nearest first.
	PerCase [][]string
	// Shortfall is requested-minus-accepted per case.
	Shortfall []int
	// MeanDistance and MedianDistance summarize the accepted case-control
	// pair distances.
	MeanDistance   float64
	MedianDistance float64
}

// KeySet returns the matched keys as a set.
func (r *MatchResult) KeySet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Keys))
	for _, key := range r.Keys {
		set[key] = struct{}{}
	}
	return set
}

// TotalShortfall sums the per-case shortfalls.
func (r *MatchResult) TotalShortfall() int {
	total := 0
	for _, s := range r.Shortfall {
		total += s
	}
	return total
}

// MatchControls selects nControls controls per case from the distance
// matrix d. controlKeys must follow the column order of d.
//
// With unique set, cases are processed in row order and each case greedily
// accepts its nearest controls not consumed by an earlier case; a control
// accepted once is permanently unavailable. Running out of controls leaves
// a case short, recorded in Shortfall. Without unique, the per-case
// selections are independent and one control may serve several cases.
// Equidistant controls resolve to the earliest-listed one in both modes.
func MatchControls(d *mat.Dense, controlKeys []string, nControls int, unique bool) (*MatchResult, error) {
	if nControls <= 0 {
		return nil, fmt.Errorf("gwas: n_controls must be positive, got %d", nControls)
	}
	nCases, nCtl := d.Dims()
	if len(controlKeys) != nCtl {
		return nil, fmt.Errorf("gwas: %d control keys for %d distance columns", len(controlKeys), nCtl)
	}

	result := &MatchResult{
		PerCase:   make([][]string, nCases),
		Shortfall: make([]int, nCases),
	}
	selected := make(map[string]struct{}, nCases*nControls)
	available := make([]bool, nCtl)
	for j := range available {
		available[j] = true
	}

	var pairDistances []float64
	for i := 0; i < nCases; i++ {
		accepted := make([]string, 0, nControls)
		for _, j := range argsortRow(d, i) {
			if unique && !available[j] {
				continue
			}
			available[j] = false
			accepted = append(accepted, controlKeys[j])
			pairDistances = append(pairDistances, d.At(i, j))
			if len(accepted) == nControls {
				break
			}
		}
		result.PerCase[i] = accepted
		result.Shortfall[i] = nControls - len(accepted)
		for _, key := range accepted {
			if _, ok := selected[key]; !ok {
				selected[key] = struct{}{}
				result.Keys = append(result.Keys, key)
			}
		}
	}

	if len(pairDistances) > 0 {
		// The summary is informational only; both calls can only fail on
		// empty input.
		result.MeanDistance, _ = stats.Mean(pairDistances)
		result.MedianDistance, _ = stats.Median(pairDistances)
	}
	if shortfall := result.TotalShortfall(); shortfall > 0 {
		log.Warn("gwas: controls exhausted,", shortfall, "requested matches unfilled")
	}
	return result, nil
}

// argsortRow returns the column indices of row i ordered by ascending
// distance. The stable sort keeps equidistant controls in column order.
func argsortRow(d *mat.Dense, i int) []int {
	_, n := d.Dims()
	order := make([]int, n)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return d.At(i, order[a]) < d.At(i, order[b])
	})
	return order
}

// MatchedCohort is the filtered joined table: every case row plus the
// matched control rows, each carrying its composite key.
type MatchedCohort struct {
	Samples []Sample
	Result  *MatchResult
}

// MatchCaseControls loads the .fam/.eigenvec pair under bfile, partitions
// it by phenotype, matches nControls controls per case in PC space and
// returns the joined table filtered to all cases plus the matched
// controls. Cases are never dropped, whatever the matching outcome.
func MatchCaseControls(bfile string, nControls int, uniqueControls bool) (*MatchedCohort, error) {
	cohort, err := LoadCohort(bfile)
	if err != nil {
		return nil, err
	}
	cases := cohort.Cases()
	controls := cohort.Controls()
	if len(cases) == 0 || len(controls) == 0 {
		return nil, fmt.Errorf("gwas: cohort %s has %d cases and %d controls, nothing to match", bfile, len(cases), len(controls))
	}

	d, err := DistanceMatrix(PCMatrix(cases), PCMatrix(controls))
	if err != nil {
		return nil, err
	}
	result, err := MatchControls(d, Keys(controls), nControls, uniqueControls)
	if err != nil {
		return nil, err
	}

	matched := result.KeySet()
	rows := make([]Sample, 0, len(cases)+len(result.Keys))
	for _, s := range cohort.Samples {
		switch {
		case s.Phenotype == plink.PhenoCase:
			rows = append(rows, s)
		case s.Phenotype == plink.PhenoControl:
			if _, ok := matched[s.Key()]; ok {
				rows = append(rows, s)
			}
		}
	}

	log.LLvl1("gwas: matched", len(result.Keys), "distinct controls for", len(cases), "cases")
	return &MatchedCohort{Samples: rows, Result: result}, nil
}
