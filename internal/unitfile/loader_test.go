package unitfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUnit(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "generic.jig", "[Jig]\nName = Generic Jig\n")
	writeUnit(t, dir, "three.scenario", "[Scenario]\nTests = test1, test2\n")
	writeUnit(t, dir, "test1.test", "[Test]\nExecStart = exit 0\n")
	writeUnit(t, dir, "README.md", "not a unit file")

	results, errs := LoadDir(dir)

	assert.Empty(t, errs)
	require.Len(t, results, 3)

	var sawJig, sawScenario, sawTest bool
	for _, r := range results {
		switch {
		case r.Jig != nil:
			sawJig = true
			assert.Equal(t, "generic", r.Jig.ID)
		case r.Scenario != nil:
			sawScenario = true
			assert.Equal(t, "three", r.Scenario.ID)
		case r.Test != nil:
			sawTest = true
			assert.Equal(t, "test1", r.Test.ID)
		}
	}
	assert.True(t, sawJig)
	assert.True(t, sawScenario)
	assert.True(t, sawTest)
}

func TestLoadDirReportsMalformedUnitWithoutAbortingOthers(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "good.test", "[Test]\nExecStart = exit 0\n")
	writeUnit(t, dir, "bad.test", "[Wrong]\nfoo=bar\n")

	results, errs := LoadDir(dir)

	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Test.ID)
	require.Len(t, errs, 1)
}

func TestLoadDirMissingDirectory(t *testing.T) {
	_, errs := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Len(t, errs, 1)
}
