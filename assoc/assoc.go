// Package assoc runs the logistic association stage: it stages the
// covariate and phenotype tables the external script expects, invokes it,
// and parses the fixed-column .assoc.logistic report.
package assoc

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"go.dedis.ch/onet/v3/log"

	"github.com/otterlab/otterseq/plink"
)

// LogisticRegression runs the association script for a binary fileset that
// already carries a .eigenvec report. The principal components become the
// covariates. Temporary covariate and phenotype TSVs are staged next to
// outpath (defaulting to bfile) and removed again whatever the script
// outcome.
func LogisticRegression(runner *plink.Runner, bfile, outpath string) error {
	for _, suffix := range append([]string{plink.EigenvecSuffix}, plink.BinarySuffixes...) {
		if _, err := os.Stat(bfile + suffix); err != nil {
			return fmt.Errorf("assoc: %s%s: %w", bfile, suffix, os.ErrNotExist)
		}
	}
	if outpath == "" {
		outpath = bfile
	}

	evec, err := plink.ReadEigenvec(bfile + plink.EigenvecSuffix)
	if err != nil {
		return err
	}
	fam, err := plink.ReadFam(bfile + plink.FamSuffix)
	if err != nil {
		return err
	}

	covarPath := outpath + ".covars.tsv"
	phenoPath := outpath + ".pheno.tsv"
	if err := writeCovars(covarPath, evec); err != nil {
		return err
	}
	defer os.Remove(covarPath)
	if err := writePheno(phenoPath, fam); err != nil {
		return err
	}
	defer os.Remove(phenoPath)

	log.LLvl1("assoc: logistic regression on", bfile, "with", evec.NumPCs(), "covariates")
	return runner.LogisticRegression(bfile, outpath, phenoPath, covarPath)
}

func writeCovars(path string, evec *plink.Eigenvec) error {
	file, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for i := 0; i < evec.NumSamples(); i++ {
		fmt.Fprintf(w, "%s\t%s", evec.FID[i], evec.IID[i])
		for j := 0; j < evec.NumPCs(); j++ {
			fmt.Fprintf(w, "\t%s", strconv.FormatFloat(evec.PCs.At(i, j), 'g', -1, 64))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func writePheno(path string, fam []plink.FamRow) error {
	file, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, row := range fam {
		fmt.Fprintf(w, "%s\t%s\t%d\n", row.FID, row.IID, row.Phenotype)
	}
	if err := w.Flush(); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// Row is one variant line of a .assoc.logistic report.
type Row struct {
	Chromosome string
	VariantID  string
	Coordinate uint32
	Allele1    string
	Test       string
	NMiss      int
	OddsRatio  float64
	Stat       float64
	P          float64
}

// ReadAssocLogistic parses a .assoc.logistic report: a header line
// followed by nine whitespace-delimited columns per variant. "NA" values
// parse as NaN.
func ReadAssocLogistic(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer file.Close()

	var rows []Row
	lineNo := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		cols := strings.Fields(scanner.Text())
		if len(cols) == 0 || cols[0] == "CHR" {
			continue
		}
		if len(cols) < 9 {
			return nil, fmt.Errorf("assoc: %s line %d: expected 9 columns, got %d", path, lineNo, len(cols))
		}

		coord64, err := strconv.ParseUint(cols[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("assoc: %s line %d: %v", path, lineNo, err)
		}
		nmiss, err := strconv.Atoi(cols[5])
		if err != nil {
			return nil, fmt.Errorf("assoc: %s line %d: %v", path, lineNo, err)
		}

		row := Row{
			Chromosome: cols[0],
			VariantID:  cols[1],
			Coordinate: uint32(coord64),
			Allele1:    cols[3],
			Test:       cols[4],
			NMiss:      nmiss,
		}
		for i, dst := range []*float64{&row.OddsRatio, &row.Stat, &row.P} {
			v, err := floatCol(cols[6+i])
			if err != nil {
				return nil, fmt.Errorf("assoc: %s line %d: %v", path, lineNo, err)
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}
	return rows, nil
}

func floatCol(s string) (float64, error) {
	if s == "NA" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
