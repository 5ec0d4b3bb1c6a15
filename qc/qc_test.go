package qc

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otterlab/otterseq/plink"
)

const toyGenome = `FID1 IID1 FID2 IID2 RT EZ Z0 Z1 Z2 PI_HAT
fam1 ind1 fam1 ind2 OT 0 0.25 0.50 0.25 0.5000
fam1 ind1 fam2 ind1 UN NA 1.0 0.0 0.0 0.0000
fam1 ind2 fam2 ind1 UN NA NA NA NA NA
`

func TestReadGenome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.genome")
	require.NoError(t, os.WriteFile(path, []byte(toyGenome), 0644))

	rows, err := ReadGenome(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "fam1", rows[0].FID1)
	assert.Equal(t, "ind2", rows[0].IID2)
	assert.Equal(t, "OT", rows[0].RT)
	assert.InDelta(t, 0.25, rows[0].Z0, 1e-12)
	assert.InDelta(t, 0.5, rows[0].Z1, 1e-12)
	assert.InDelta(t, 0.5, rows[0].PiHat, 1e-12)

	assert.Equal(t, "NA", rows[1].EZ)
	assert.InDelta(t, 0, rows[1].PiHat, 1e-12)

	assert.True(t, math.IsNaN(rows[2].Z0))
	assert.True(t, math.IsNaN(rows[2].PiHat))
}

func TestReadGenomeShortLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.genome")
	require.NoError(t, os.WriteFile(path, []byte("fam1 ind1 fam1 ind2 OT\n"), 0644))

	_, err := ReadGenome(path)
	assert.Error(t, err)
}

func TestReadGenomeMissingFile(t *testing.T) {
	_, err := ReadGenome(filepath.Join(t.TempDir(), "nope.genome"))
	assert.Error(t, err)
}

func TestRelatedness(t *testing.T) {
	dir := t.TempDir()
	bfile := filepath.Join(dir, "toy")
	require.NoError(t, os.WriteFile(bfile+".bed", nil, 0644))

	// Stub script standing in for the external tool: emits the report the
	// real invocation would leave behind.
	script := "#!/bin/bash\nprintf '" +
		"FID1 IID1 FID2 IID2 RT EZ Z0 Z1 Z2 PI_HAT\\n" +
		"fam1 ind1 fam1 ind2 OT 0 0.25 0.50 0.25 0.5000\\n" +
		"' > \"" + bfile + ".genome\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ibd.sh"), []byte(script), 0755))

	config := plink.DefaultConfig()
	config.ScriptDir = dir
	runner := plink.NewRunner(config)

	rows, err := Relatedness(runner, bfile)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.5, rows[0].PiHat, 1e-12)
}

func TestRelatednessMissingFileset(t *testing.T) {
	runner := plink.NewRunner(plink.DefaultConfig())

	_, err := Relatedness(runner, filepath.Join(t.TempDir(), "toy"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
