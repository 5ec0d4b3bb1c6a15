package snp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBIM materializes ids as a minimal .bim file.
func writeBIM(t *testing.T, dir, name string, ids []string) {
	t.Helper()
	content := ""
	for i, id := range ids {
		content += "1\t" + id + "\t0\t" + string(rune('1'+i%9)) + "000\tA\tG\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestCheckMultiAllelic(t *testing.T) {
	assert.NoError(t, CheckMultiAllelic(nil))
	assert.NoError(t, CheckMultiAllelic([]string{"rs1", "rs2", "rs3"}))

	err := CheckMultiAllelic([]string{"rs1", "rs2", "rs1"})
	require.Error(t, err)
	var multi *MultiAllelicError
	require.ErrorAs(t, err, &multi)
	assert.Equal(t, "rs1", multi.ID)
}

func TestCommonSNPs(t *testing.T) {
	dir := t.TempDir()
	writeBIM(t, dir, "a.bim", []string{"rs1", "rs2", "rs3"})
	writeBIM(t, dir, "b.bim", []string{"rs2", "rs3", "rs4"})
	writeBIM(t, dir, "c.bim", []string{"rs3", "rs4", "rs5"})

	common, err := CommonSNPs(dir, false, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"rs3"}, common)
}

func TestCommonSNPsOrderIndependent(t *testing.T) {
	sets := [][]string{
		{"rs0005", "rs0001", "rs0003", "rs0002"},
		{"rs0001", "rs0005", "rs0003", "rs0007"},
		{"rs0003", "rs0001", "rs0006", "rs0005"},
	}
	// Supply the same sets under differently ordered filenames; the
	// directory scan order must not affect the result.
	permutations := [][]int{{0, 1, 2}, {2, 0, 1}, {1, 2, 0}}
	names := []string{"a.bim", "b.bim", "c.bim"}

	for _, perm := range permutations {
		dir := t.TempDir()
		for i, setIdx := range perm {
			writeBIM(t, dir, names[i], sets[setIdx])
		}
		common, err := CommonSNPs(dir, false, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"rs0001", "rs0003", "rs0005"}, common)
	}
}

func TestCommonSNPsSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeBIM(t, dir, "only.bim", []string{"rs3", "rs1", "rs2"})

	common, err := CommonSNPs(dir, false, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"rs1", "rs2", "rs3"}, common)
}

func TestCommonSNPsSkipsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeBIM(t, dir, "a.bim", []string{"rs1", "rs2"})
	writeBIM(t, dir, "empty.bim", nil)
	writeBIM(t, dir, "z.bim", []string{"rs2", "rs3"})

	// The empty file contributes no constraint instead of forcing an
	// empty intersection.
	common, err := CommonSNPs(dir, false, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"rs2"}, common)
}

func TestCommonSNPsDisjointSets(t *testing.T) {
	dir := t.TempDir()
	writeBIM(t, dir, "a.bim", []string{"rs1", "rs2"})
	writeBIM(t, dir, "b.bim", []string{"rs3", "rs4"})
	writeBIM(t, dir, "c.bim", []string{"rs1", "rs5"})

	common, err := CommonSNPs(dir, false, "")
	require.NoError(t, err)
	assert.Empty(t, common)
}

func TestCommonSNPsMultiAllelic(t *testing.T) {
	dir := t.TempDir()
	writeBIM(t, dir, "a.bim", []string{"rs1", "rs2", "rs1"})
	writeBIM(t, dir, "b.bim", []string{"rs1", "rs2"})

	_, err := CommonSNPs(dir, false, "")
	var multi *MultiAllelicError
	require.ErrorAs(t, err, &multi)
	assert.Equal(t, "rs1", multi.ID)
	assert.Equal(t, filepath.Join(dir, "a.bim"), multi.File)
}

func TestCommonSNPsNoBIMFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	_, err := CommonSNPs(dir, false, "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCommonSNPsMissingDirectory(t *testing.T) {
	_, err := CommonSNPs(filepath.Join(t.TempDir(), "nope"), false, "")
	assert.Error(t, err)
}

func TestCommonSNPsWrite(t *testing.T) {
	dir := t.TempDir()
	writeBIM(t, dir, "a.bim", []string{"rs2", "rs1"})
	writeBIM(t, dir, "b.bim", []string{"rs1", "rs2"})
	out := t.TempDir()

	common, err := CommonSNPs(dir, true, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"rs1", "rs2"}, common)

	data, err := os.ReadFile(filepath.Join(out, CommonSNPsFile))
	require.NoError(t, err)
	assert.Equal(t, "rs1\nrs2\n", string(data))
}

func TestCommonSNPsWriteWithoutOutPath(t *testing.T) {
	_, err := CommonSNPs(t.TempDir(), true, "")
	assert.True(t, errors.Is(err, ErrNoOutPath))
}
