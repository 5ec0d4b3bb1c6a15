// Package snp validates variant identifier sets and computes the
// identifiers shared across a directory of .bim files, the precondition
// for merging genotype datasets.
package snp

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/carbocation/pfx"
	"go.dedis.ch/onet/v3/log"

	"github.com/otterlab/otterseq/plink"
)

// CommonSNPsFile is the fixed name of the persisted intersection.
const CommonSNPsFile = "common_snps.txt"

// ErrNoOutPath is returned when writing is requested without a destination
// directory.
var ErrNoOutPath = errors.New("snp: write requested without an output path")

// MultiAllelicError reports a duplicated rsID within a single file. PLINK
// encodes multi-allelic sites as repeated identifiers, which breaks
// downstream merging; the offending file has to be cleaned by the caller,
// this is not a transient fault.
type MultiAllelicError struct {
	File string
	ID   string
}

func (e *MultiAllelicError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("snp: multi-allelic variant %s", e.ID)
	}
	return fmt.Sprintf("snp: multi-allelic variant %s in %s", e.ID, e.File)
}

// CheckMultiAllelic returns a *MultiAllelicError naming the first
// identifier that occurs more than once in ids. O(n).
func CheckMultiAllelic(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return &MultiAllelicError{ID: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// CommonSNPs intersects the variant identifiers of every .bim file found
// in dir and returns them sorted ascending.
//
// An empty file constrains nothing: it is logged and skipped instead of
// forcing the intersection empty. A duplicated identifier in any non-empty
// file aborts the whole operation with a *MultiAllelicError. Once the
// running intersection is empty no further file can change the result, so
// the scan stops early.
//
// With write set, the result is persisted one identifier per line as
// common_snps.txt inside outpath.
func CommonSNPs(dir string, write bool, outpath string) ([]string, error) {
	if write && outpath == "" {
		return nil, ErrNoOutPath
	}

	bimFiles, err := bimFilesIn(dir)
	if err != nil {
		return nil, err
	}

	var common map[string]struct{}
	for _, path := range bimFiles {
		ids, err := plink.VariantIDs(path)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			log.Warn("snp: skipping empty file", path)
			continue
		}
		if err := CheckMultiAllelic(ids); err != nil {
			var multi *MultiAllelicError
			if errors.As(err, &multi) {
				multi.File = path
			}
			return nil, err
		}

		if common == nil {
			common = make(map[string]struct{}, len(ids))
			for _, id := range ids {
				common[id] = struct{}{}
			}
			continue
		}

		fileSet := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			fileSet[id] = struct{}{}
		}
		for id := range common {
			if _, ok := fileSet[id]; !ok {
				delete(common, id)
			}
		}
		if len(common) == 0 {
			log.LLvl1("snp: no common identifiers, stopping after", path)
			break
		}
	}

	sorted := make([]string, 0, len(common))
	for id := range common {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	if write {
		if err := writeCommonSNPs(outpath, sorted); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

func bimFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pfx.Err(err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), plink.BimSuffix) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("snp: no %s files in %s: %w", plink.BimSuffix, dir, os.ErrNotExist)
	}
	return paths, nil
}

func writeCommonSNPs(outpath string, ids []string) error {
	file, err := os.Create(filepath.Join(outpath, CommonSNPsFile))
	if err != nil {
		return pfx.Err(err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, id := range ids {
		fmt.Fprintf(w, "%s\n", id)
	}
	if err := w.Flush(); err != nil {
		return pfx.Err(err)
	}
	return nil
}
