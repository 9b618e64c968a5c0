package serialization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

func TestWriteReadStateDict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.dns")

	dict := map[string]*tensor.Tensor{
		"0.weight": tensor.Randn(tensor.Shape{4, 3}),
		"0.bias":   tensor.Randn(tensor.Shape{4}),
		"2.weight": tensor.Randn(tensor.Shape{2, 4}),
	}
	require.NoError(t, WriteStateDict(path, dict))

	got, err := ReadStateDict(path)
	require.NoError(t, err)
	require.Len(t, got, len(dict))
	for name, want := range dict {
		require.Contains(t, got, name)
		assert.True(t, want.Equal(got[name]), "tensor %s", name)
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	dict := map[string]*tensor.Tensor{
		"b": tensor.Ones(tensor.Shape{2}),
		"a": tensor.Ones(tensor.Shape{3}),
	}

	pathA := filepath.Join(dir, "a.dns")
	pathB := filepath.Join(dir, "b.dns")
	require.NoError(t, WriteStateDict(pathA, dict))
	require.NoError(t, WriteStateDict(pathB, dict))

	bytesA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	bytesB, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, bytesA, bytesB)
}

func TestReadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.dns")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot at all"), 0o600))

	_, err := ReadStateDict(path)
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadStateDict(filepath.Join(t.TempDir(), "missing.dns"))
	assert.Error(t, err)
}
