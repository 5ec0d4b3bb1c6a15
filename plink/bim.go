package plink

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// Column positions within a .bim file.
const (
	bimChromosome = iota
	bimVariantID
	bimMorgans
	bimCoordinate
	bimAllele1
	bimAllele2
)

// BIMRow is one variant line of a .bim file. The centimorgan column is
// skipped on purpose.
type BIMRow struct {
	Chromosome string
	VariantID  string // rsID
	Coordinate uint32
	Allele1    string
	Allele2    string
}

// BIM streams the rows of a .bim file.
type BIM struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	err     error
}

// OpenBIM opens a .bim file for streaming.
func OpenBIM(path string) (*BIM, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return &BIM{
		path:    path,
		file:    file,
		scanner: bufio.NewScanner(file),
	}, nil
}

// Close releases the underlying file.
func (b *BIM) Close() error {
	return b.file.Close()
}

// Err reports the first error hit while streaming, if any.
func (b *BIM) Err() error {
	if b.err != nil {
		return b.err
	}
	return b.scanner.Err()
}

// Read returns the next row, or nil at end of input or on error (check
// Err afterwards).
func (b *BIM) Read() *BIMRow {
	if b.err != nil || !b.scanner.Scan() {
		return nil
	}

	cols := strings.Fields(b.scanner.Text())
	if len(cols) < bimAllele2+1 {
		b.err = fmt.Errorf("plink: %s: expected %d columns, got %d", b.path, bimAllele2+1, len(cols))
		return nil
	}

	coord64, err := strconv.ParseUint(cols[bimCoordinate], 10, 32)
	if err != nil {
		b.err = fmt.Errorf("plink: %s: %v", b.path, err)
		return nil
	}

	return &BIMRow{
		Chromosome: cols[bimChromosome],
		VariantID:  cols[bimVariantID],
		Coordinate: uint32(coord64),
		Allele1:    cols[bimAllele1],
		Allele2:    cols[bimAllele2],
	}
}

// VariantIDs reads only the identifier column of a .bim file, preserving
// file order. An empty file yields an empty slice, not an error.
func VariantIDs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer file.Close()

	ids := []string{}
	lineNo := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		cols := strings.Fields(scanner.Text())
		if len(cols) == 0 {
			continue
		}
		if len(cols) <= bimVariantID {
			return nil, fmt.Errorf("plink: %s line %d: missing variant identifier", path, lineNo)
		}
		ids = append(ids, cols[bimVariantID])
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}
	return ids, nil
}
