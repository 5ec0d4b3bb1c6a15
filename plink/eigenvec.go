package plink

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"gonum.org/v1/gonum/mat"
)

// Eigenvec is a parsed .eigenvec report: sample identifiers plus one row
// of principal components per sample, in file order.
type Eigenvec struct {
	FID []string
	IID []string
	PCs *mat.Dense
}

// NumSamples returns the number of rows.
func (e *Eigenvec) NumSamples() int {
	return len(e.FID)
}

// NumPCs returns the shared component dimensionality k.
func (e *Eigenvec) NumPCs() int {
	if e.PCs == nil {
		return 0
	}
	_, k := e.PCs.Dims()
	return k
}

// ReadEigenvec parses a .eigenvec file: space-delimited, no header, FID and
// IID followed by PC1..PCk. Every row must carry the same k.
func ReadEigenvec(path string) (*Eigenvec, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer file.Close()

	e := &Eigenvec{}
	var data []float64
	k := -1
	lineNo := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		cols := strings.Fields(scanner.Text())
		if len(cols) == 0 {
			continue
		}
		if len(cols) < 3 {
			return nil, fmt.Errorf("plink: %s line %d: expected FID, IID and at least one component", path, lineNo)
		}
		if k < 0 {
			k = len(cols) - 2
		} else if len(cols)-2 != k {
			return nil, fmt.Errorf("plink: %s line %d: expected %d components, got %d", path, lineNo, k, len(cols)-2)
		}
		e.FID = append(e.FID, cols[0])
		e.IID = append(e.IID, cols[1])
		for _, col := range cols[2:] {
			v, err := strconv.ParseFloat(col, 64)
			if err != nil {
				return nil, fmt.Errorf("plink: %s line %d: %v", path, lineNo, err)
			}
			data = append(data, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}
	if len(e.FID) == 0 {
		return nil, fmt.Errorf("plink: %s: no samples", path)
	}

	e.PCs = mat.NewDense(len(e.FID), k, data)
	return e, nil
}
