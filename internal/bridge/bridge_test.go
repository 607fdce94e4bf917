package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapper() *Mapper {
	return NewMapper(
		map[string]string{"Germany": "de", "italy": "IT", "Atlantis": "AT1"},
		map[string]string{"DE": "Germany", "IT": "Italy", "es": "Spain"},
		map[string]string{"독일": "de", "미국": "US"},
	)
}

func TestMapper_CodeForName(t *testing.T) {
	m := testMapper()

	code, ok := m.CodeForName("germany")
	require.True(t, ok)
	assert.Equal(t, "DE", code, "codes are upper-cased on load")

	code, ok = m.CodeForName("  Italy  ")
	require.True(t, ok)
	assert.Equal(t, "IT", code)

	_, ok = m.CodeForName("narnia")
	assert.False(t, ok)
}

func TestMapper_NameForCode(t *testing.T) {
	m := testMapper()

	name, ok := m.NameForCode("de")
	require.True(t, ok)
	assert.Equal(t, "Germany", name, "lookup upper-cases the code")

	name, ok = m.NameForCode("ES")
	require.True(t, ok)
	assert.Equal(t, "Spain", name)

	_, ok = m.NameForCode("XX")
	assert.False(t, ok)
}

func TestMapper_Resolve(t *testing.T) {
	m := testMapper()

	code, display, ok := m.Resolve("Germany")
	require.True(t, ok)
	assert.Equal(t, "DE", code)
	assert.Equal(t, "Germany", display)

	// First hop succeeds, second hop misses: the row is dropped.
	_, _, ok = m.Resolve("Atlantis")
	assert.False(t, ok)

	_, _, ok = m.Resolve("unknown")
	assert.False(t, ok)
}

func TestMapper_ResolveLoose(t *testing.T) {
	m := testMapper()

	code, display := m.ResolveLoose("germany")
	assert.Equal(t, "DE", code)
	assert.Equal(t, "Germany", display)

	code, display = m.ResolveLoose("unknown")
	assert.Equal(t, "", code)
	assert.Equal(t, "", display)

	// Known name whose code has no display entry keeps the code.
	code, display = m.ResolveLoose("Atlantis")
	assert.Equal(t, "AT1", code)
	assert.Equal(t, "", display)
}

func TestMapper_ResolveKorean(t *testing.T) {
	m := testMapper()

	code, display, ok := m.ResolveKorean("독일")
	require.True(t, ok)
	assert.Equal(t, "DE", code)
	assert.Equal(t, "Germany", display)

	// Code resolves but has no display name: dropped.
	_, _, ok = m.ResolveKorean("미국")
	assert.False(t, ok)

	_, _, ok = m.ResolveKorean("없는나라")
	assert.False(t, ok)
}

func TestLoad_EmbeddedDefault(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)

	code, display, ok := m.Resolve("Germany")
	require.True(t, ok)
	assert.Equal(t, "DE", code)
	assert.Equal(t, "Germany", display)

	code, display, ok = m.ResolveKorean("일본")
	require.True(t, ok)
	assert.Equal(t, "JP", code)
	assert.Equal(t, "Japan", display)
}

func TestLoad_FileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.yaml")
	content := "name_to_code:\n  wakanda: WK\ncode_to_name:\n  WK: Wakanda\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := Load(path)
	require.NoError(t, err)

	code, display, ok := m.Resolve("Wakanda")
	require.True(t, ok)
	assert.Equal(t, "WK", code)
	assert.Equal(t, "Wakanda", display)

	// Missing file falls back to the embedded default.
	m, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	_, _, ok = m.Resolve("Germany")
	assert.True(t, ok)
}
