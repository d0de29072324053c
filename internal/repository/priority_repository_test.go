package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePriorityFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPriorityListRepositoryLoadTiers(t *testing.T) {
	dir := t.TempDir()
	tier1 := writePriorityFile(t, dir, "tier1.csv", "BFM,Description\n10250,Air compressor\n10311,Hydraulic press\n")
	tier2 := writePriorityFile(t, dir, "tier2.csv", "BFM\n10311\n10423\n")

	overrides := NewPriorityListRepository(nil).Load([]string{tier1, tier2})

	assert.Equal(t, 1, overrides.PriorityFor("10250"))
	// An asset in tier 1 stays tier 1 even when tier 2 lists it again.
	assert.Equal(t, 1, overrides.PriorityFor("10311"))
	assert.Equal(t, 2, overrides.PriorityFor("10423"))
	// Unlisted assets fall back to the default tier.
	assert.Equal(t, 99, overrides.PriorityFor("99999"))
}

func TestPriorityListRepositoryNormalisesSpreadsheetArtifacts(t *testing.T) {
	dir := t.TempDir()
	// BOM-prefixed header and float-formatted identifiers, as produced by
	// spreadsheet exports.
	path := writePriorityFile(t, dir, "tier1.csv", "\uFEFFBFM,Notes\n10423.0,pump\n 10250 ,\n,\n")

	overrides := NewPriorityListRepository(nil).Load([]string{path})

	assert.Equal(t, 1, overrides.PriorityFor("10423"))
	assert.Equal(t, 1, overrides.PriorityFor("10250"))
}

func TestPriorityListRepositoryMissingFileContributesNothing(t *testing.T) {
	dir := t.TempDir()
	tier2 := writePriorityFile(t, dir, "tier2.csv", "BFM\n10311\n")

	overrides := NewPriorityListRepository(nil).Load([]string{filepath.Join(dir, "absent.csv"), tier2})

	assert.Equal(t, 99, overrides.PriorityFor("10250"))
	assert.Equal(t, 2, overrides.PriorityFor("10311"))
}

func TestPriorityListRepositoryRejectsFileWithoutBFMColumn(t *testing.T) {
	dir := t.TempDir()
	bad := writePriorityFile(t, dir, "bad.csv", "Asset,Description\n10250,compressor\n")

	overrides := NewPriorityListRepository(nil).Load([]string{bad})

	assert.Equal(t, 99, overrides.PriorityFor("10250"))
}
