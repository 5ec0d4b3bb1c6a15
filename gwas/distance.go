package gwas

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DistanceMatrix computes the pairwise Euclidean distances between case
// and control PC vectors. Row i, column j of the result holds the distance
// between case i and control j. Both inputs must share the same component
// dimensionality.
func DistanceMatrix(cases, controls *mat.Dense) (*mat.Dense, error) {
	if cases == nil || controls == nil {
		return nil, fmt.Errorf("gwas: distance matrix requires non-empty case and control matrices")
	}
	nCases, kCases := cases.Dims()
	nControls, kControls := controls.Dims()
	if kCases != kControls {
		return nil, fmt.Errorf("gwas: component mismatch: cases have %d, controls have %d", kCases, kControls)
	}

	d := mat.NewDense(nCases, nControls, nil)
	for i := 0; i < nCases; i++ {
		caseRow := cases.RawRowView(i)
		for j := 0; j < nControls; j++ {
			d.Set(i, j, floats.Distance(caseRow, controls.RawRowView(j), 2))
		}
	}
	return d, nil
}
