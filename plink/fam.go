package plink

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// Sex codes in the fifth .fam column. Anything else means unknown.
const (
	SexMale   = 1
	SexFemale = 2
)

// Phenotype codes in the sixth .fam column. Anything else means unknown.
const (
	PhenoControl = 1
	PhenoCase    = 2
)

// FamRow is one sample line of a .fam file: six whitespace-delimited
// columns, no header.
type FamRow struct {
	FID        string
	IID        string
	PaternalID string
	MaternalID string
	Sex        int
	Phenotype  int
}

// Key is the composite sample identifier shared with the .eigenvec table.
func (r FamRow) Key() string {
	return r.FID + "-" + r.IID
}

// ReadFam parses a .fam file in file order. Non-numeric sex or phenotype
// codes are kept as 0 (unknown) rather than rejected.
func ReadFam(path string) ([]FamRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer file.Close()

	var rows []FamRow
	lineNo := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		cols := strings.Fields(scanner.Text())
		if len(cols) == 0 {
			continue
		}
		if len(cols) < 6 {
			return nil, fmt.Errorf("plink: %s line %d: expected 6 columns, got %d", path, lineNo, len(cols))
		}
		sex, err := strconv.Atoi(cols[4])
		if err != nil {
			sex = 0
		}
		pheno, err := strconv.Atoi(cols[5])
		if err != nil {
			pheno = 0
		}
		rows = append(rows, FamRow{
			FID:        cols[0],
			IID:        cols[1],
			PaternalID: cols[2],
			MaternalID: cols[3],
			Sex:        sex,
			Phenotype:  pheno,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}
	return rows, nil
}
