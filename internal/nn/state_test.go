package nn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

func newStateTestModel() *Sequential {
	return NewSequential(
		NewLinear(4, 8),
		NewReLU(),
		NewLinear(8, 2),
	)
}

func TestStateDictRoundTrip(t *testing.T) {
	src := newStateTestModel()
	dst := newStateTestModel()

	dict := StateDict(src)
	assert.Len(t, dict, 4)

	require.NoError(t, LoadStateDict(dst, dict))
	for i, p := range src.Parameters() {
		assert.True(t, p.Data().Equal(dst.Parameters()[i].Data()), "parameter %d", i)
	}
}

func TestLoadStateDictErrors(t *testing.T) {
	model := newStateTestModel()

	// Missing key.
	dict := StateDict(model)
	delete(dict, "0.weight")
	assert.Error(t, LoadStateDict(newStateTestModel(), dict))

	// Shape mismatch.
	dict = StateDict(model)
	dict["0.weight"] = tensor.Zeros(tensor.Shape{2, 2})
	assert.Error(t, LoadStateDict(newStateTestModel(), dict))
}

func TestSaveLoadState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.dns")

	src := newStateTestModel()
	require.NoError(t, SaveState(path, src))

	dst := newStateTestModel()
	require.NoError(t, LoadState(path, dst))

	input := tensor.Randn(tensor.Shape{3, 4})
	assert.True(t, src.Forward(input).Equal(dst.Forward(input)))
}

func TestLoadStateMissingFile(t *testing.T) {
	err := LoadState(filepath.Join(t.TempDir(), "nope.dns"), newStateTestModel())
	assert.Error(t, err)
}
