// Package qc wraps the relatedness stage of the pipeline: it triggers the
// identity-by-descent computation and parses the resulting fixed-column
// .genome report.
package qc

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"

	"github.com/otterlab/otterseq/plink"
)

// GenomeRow is one sample pair of a .genome report.
type GenomeRow struct {
	FID1, IID1 string
	FID2, IID2 string
	RT         string
	EZ         string
	Z0, Z1, Z2 float64
	PiHat      float64
}

// Relatedness runs the IBD computation for a binary fileset and returns
// the parsed pairwise estimates.
func Relatedness(runner *plink.Runner, bfile string) ([]GenomeRow, error) {
	if err := runner.IBD(bfile); err != nil {
		return nil, err
	}
	return ReadGenome(bfile + plink.GenomeSuffix)
}

// ReadGenome parses a .genome report: a header line followed by at least
// ten whitespace-delimited columns per pair. Missing estimates ("NA")
// parse as NaN.
func ReadGenome(path string) ([]GenomeRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer file.Close()

	var rows []GenomeRow
	lineNo := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		cols := strings.Fields(scanner.Text())
		if len(cols) == 0 || cols[0] == "FID1" {
			continue
		}
		if len(cols) < 10 {
			return nil, fmt.Errorf("qc: %s line %d: expected 10 columns, got %d", path, lineNo, len(cols))
		}

		row := GenomeRow{
			FID1: cols[0], IID1: cols[1],
			FID2: cols[2], IID2: cols[3],
			RT: cols[4], EZ: cols[5],
		}
		for i, dst := range []*float64{&row.Z0, &row.Z1, &row.Z2, &row.PiHat} {
			v, err := floatCol(cols[6+i])
			if err != nil {
				return nil, fmt.Errorf("qc: %s line %d: %v", path, lineNo, err)
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
