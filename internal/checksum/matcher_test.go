package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	_, err := NewChecksumMatcher("").Match([]byte("x"))
	assert.Error(t, err)

	cm := NewChecksumMatcher(Sum([]byte("ledger")))
	ok, err := cm.Match([]byte("ledger"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cm.Match([]byte("ledger2"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"asOf":"2024-06-03"}`), 0644))

	cm := NewChecksumMatcher("")
	changed, err := cm.Update(path)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, cm.Expected(), 64)

	changed, err = cm.Update(path)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte(`{"asOf":"2024-06-04"}`), 0644))
	changed, err = cm.Update(path)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = cm.Update(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
