// Package gwas matches case samples to ancestry-similar controls using
// the principal components computed by the external genotype toolchain.
package gwas

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/otterlab/otterseq/plink"
)

// Sample is one joined .fam x .eigenvec row.
type Sample struct {
	FID       string
	IID       string
	Phenotype int
	PC        []float64
}

// Key is the composite identifier used for all set operations.
func (s Sample) Key() string {
	return s.FID + "-" + s.IID
}

// Cohort is the joined table for one fileset, in .eigenvec row order.
type Cohort struct {
	Samples []Sample
	NumPCs  int
}

// LoadCohort joins the .fam and .eigenvec files of a fileset prefix on
// (FID, IID). Both files must exist; a sample present in the .eigenvec but
// absent from the .fam is an error.
func LoadCohort(bfile string) (*Cohort, error) {
	famPath := bfile + plink.FamSuffix
	evecPath := bfile + plink.EigenvecSuffix
	for _, path := range []string{famPath, evecPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("gwas: %s: %w", path, os.ErrNotExist)
		}
	}

	fam, err := plink.ReadFam(famPath)
	if err != nil {
		return nil, err
	}
	evec, err := plink.ReadEigenvec(evecPath)
	if err != nil {
		return nil, err
	}

	pheno := make(map[string]int, len(fam))
	for _, row := range fam {
		pheno[row.Key()] = row.Phenotype
	}

	samples := make([]Sample, 0, evec.NumSamples())
	for i := 0; i < evec.NumSamples(); i++ {
		s := Sample{
			FID: evec.FID[i],
			IID: evec.IID[i],
			PC:  mat.Row(nil, i, evec.PCs),
		}
		code, ok := pheno[s.Key()]
		if !ok {
			return nil, fmt.Errorf("gwas: sample %s present in %s but not in %s", s.Key(), evecPath, famPath)
		}
		s.Phenotype = code
		samples = append(samples, s)
	}

	return &Cohort{Samples: samples, NumPCs: evec.NumPCs()}, nil
}

// Cases returns the samples with the case phenotype code, in row order.
func (c *Cohort) Cases() []Sample {
	return c.withPhenotype(plink.PhenoCase)
}

// Controls returns the samples with the control phenotype code, in row
// order.
func (c *Cohort) Controls() []Sample {
	return c.withPhenotype(plink.PhenoControl)
}

func (c *Cohort) withPhenotype(code int) []Sample {
	var out []Sample
	for _, s := range c.Samples {
		if s.Phenotype == code {
			out = append(out, s)
		}
	}
	return out
}

// PCMatrix stacks the PC vectors of samples into a dense matrix, one row
// per sample. Returns nil for an empty slice.
func PCMatrix(samples []Sample) *mat.Dense {
	if len(samples) == 0 {
		return nil
	}
	k := len(samples[0].PC)
	data := make([]float64, 0, len(samples)*k)
	for _, s := range samples {
		data = append(data, s.PC...)
	}
	return mat.NewDense(len(samples), k, data)
}

// Keys returns the composite keys of samples in order.
func Keys(samples []Sample) []string {
	keys := make([]string, len(samples))
	for i, s := range samples {
		keys[i] = s.Key()
	}
	return keys
}
