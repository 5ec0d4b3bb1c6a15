package plink

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"go.dedis.ch/onet/v3/log"
)

// BinarySuffixes are the three files of a PLINK binary fileset.
var BinarySuffixes = []string{".bed", ".bim", ".fam"}

// Suffixes of the report files produced by the toolchain.
const (
	FamSuffix      = ".fam"
	BimSuffix      = ".bim"
	PedSuffix      = ".ped"
	EigenvecSuffix = ".eigenvec"
	EigenvalSuffix = ".eigenval"
	GenomeSuffix   = ".genome"
	LogisticSuffix = ".assoc.logistic"
)

// Wrapper scripts looked up in Config.ScriptDir.
const (
	pcaScript      = "pca.sh"
	ibdScript      = "ibd.sh"
	binarizeScript = "binarize.sh"
	extractScript  = "extract.sh"
	logisticScript = "logistic_regression.sh"
)

// Runner performs one-shot synchronous invocations of the wrapper scripts.
// Every method validates its inputs before touching the external tool and
// never retries a failed run.
type Runner struct {
	config Config
}

// NewRunner returns a Runner bound to a read-only configuration.
func NewRunner(config Config) *Runner {
	return &Runner{config: config}
}

func (r *Runner) run(script string, args ...string) error {
	cmd := exec.Command("bash", append([]string{r.config.Script(script)}, args...)...)
	log.Lvl2("plink: exec", strings.Join(cmd.Args, " "))
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		log.Lvl3("plink:", script, "output:", string(out))
	}
	if err != nil {
		return fmt.Errorf("plink: %s: %v", script, err)
	}
	return nil
}

// requireFiles fails fast when any file of a fileset is absent, before any
// partial output can be produced.
func requireFiles(prefix string, suffixes ...string) error {
	for _, suffix := range suffixes {
		if _, err := os.Stat(prefix + suffix); err != nil {
			return fmt.Errorf("plink: %s%s: %w", prefix, suffix, os.ErrNotExist)
		}
	}
	return nil
}

// PCA computes nPCs principal components for a binary fileset. The
// .eigenvec and .eigenval reports land next to outpath, which defaults to
// bfile when empty.
func (r *Runner) PCA(bfile, outpath string, excludeHLA bool, nPCs int) error {
	if err := requireFiles(bfile, BinarySuffixes...); err != nil {
		return err
	}
	if nPCs <= 0 {
		return fmt.Errorf("plink: number of PCs must be positive, got %d", nPCs)
	}
	if outpath == "" {
		outpath = bfile
	}
	return r.run(pcaScript,
		"--bfile", bfile,
		"--outpath", outpath,
		"--exclude-hla", strconv.FormatBool(excludeHLA),
		"--pcs", strconv.Itoa(nPCs),
	)
}

// IBD computes pairwise identity-by-descent estimates, producing a .genome
// report next to bfile.
func (r *Runner) IBD(bfile string) error {
	if err := requireFiles(bfile, ".bed"); err != nil {
		return err
	}
	return r.run(ibdScript, "--bfile", bfile)
}

// Binarize converts raw .ped filesets into binary filesets under outpath.
// path may be a single .ped file, a fileset prefix, or a directory holding
// several .ped files.
func (r *Runner) Binarize(path, outpath string) error {
	pedFiles, err := pedInputs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outpath, 0755); err != nil {
		return pfx.Err(err)
	}
	for _, ped := range pedFiles {
		prefix := strings.TrimSuffix(ped, PedSuffix)
		log.LLvl1("plink: binarizing", prefix)
		if err := r.run(binarizeScript, "--file", prefix, "--outpath", outpath); err != nil {
			return err
		}
	}
	return nil
}

func pedInputs(path string) ([]string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, pfx.Err(err)
		}
		var peds []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), PedSuffix) {
				peds = append(peds, filepath.Join(path, entry.Name()))
			}
		}
		if len(peds) == 0 {
			return nil, fmt.Errorf("plink: no %s files in %s: %w", PedSuffix, path, os.ErrNotExist)
		}
		return peds, nil
	}

	ped := path
	if !strings.HasSuffix(ped, PedSuffix) {
		ped += PedSuffix
	}
	if _, err := os.Stat(ped); err != nil {
		return nil, fmt.Errorf("plink: %s: %w", ped, os.ErrNotExist)
	}
	return []string{ped}, nil
}

// Extract subsets a binary fileset to the variants listed one per line in
// snpFile, writing a new fileset at outpath. This is how the common-SNP
// list drives the downstream merge.
func (r *Runner) Extract(bfile, snpFile, outpath string) error {
	if err := requireFiles(bfile, BinarySuffixes...); err != nil {
		return err
	}
	if _, err := os.Stat(snpFile); err != nil {
		return fmt.Errorf("plink: %s: %w", snpFile, os.ErrNotExist)
	}
	return r.run(extractScript, "--bfile", bfile, "--extract", snpFile, "--outpath", outpath)
}

// LogisticRegression invokes the association script with pre-materialized
// phenotype and covariate tables. Input staging lives in package assoc.
func (r *Runner) LogisticRegression(bfile, outpath, phenoFile, covarFile string) error {
	return r.run(logisticScript,
		"--bfile", bfile,
		"--outpath", outpath,
		"--pheno", phenoFile,
		"--covar", covarFile,
	)
}
