package selfsup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

func TestRotate90KnownValues(t *testing.T) {
	// [1 2]    ccw    [2 4]
	// [3 4]   ---->   [1 3]
	img, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)

	got := Rotate90(img)
	assert.Equal(t, []float32{2, 4, 1, 3}, got.Data())
}

func TestRotate90PerChannel(t *testing.T) {
	img, err := tensor.FromSlice([]float32{
		1, 2, 3, 4, // channel 0
		5, 6, 7, 8, // channel 1
	}, tensor.Shape{1, 2, 2, 2})
	require.NoError(t, err)

	got := Rotate90(img)
	assert.Equal(t, []float32{2, 4, 1, 3, 6, 8, 5, 7}, got.Data())
}

func TestRotate90FourTimesIsIdentity(t *testing.T) {
	img := tensor.Randn(tensor.Shape{2, 3, 5, 5})

	rotated := img
	for i := 0; i < 4; i++ {
		rotated = Rotate90(rotated)
	}
	assert.True(t, img.Equal(rotated))
}

func TestWithRotations(t *testing.T) {
	images := tensor.Randn(tensor.Shape{3, 1, 4, 4})

	rotated, labels := WithRotations(images)
	assert.Equal(t, tensor.Shape{12, 1, 4, 4}, rotated.Shape())
	require.Len(t, labels, 12)

	// Labels cycle 0..3 per source image.
	for i, l := range labels {
		assert.Equal(t, i%NumRotations, l)
	}

	// Index 4*i is the unrotated source image.
	imageLen := 16
	for i := 0; i < 3; i++ {
		src := images.Data()[i*imageLen : (i+1)*imageLen]
		dst := rotated.Data()[i*NumRotations*imageLen : (i*NumRotations+1)*imageLen]
		assert.Equal(t, src, dst)
	}

	// Rotation r equals r applications of Rotate90 to the source.
	first := images.Data()[:imageLen]
	single, err := tensor.FromSlice(first, tensor.Shape{1, 1, 4, 4})
	require.NoError(t, err)
	expected := Rotate90(Rotate90(single))
	got := rotated.Data()[2*imageLen : 3*imageLen]
	assert.Equal(t, expected.Data(), got)
}

func TestWithRotationsLeavesSourceUntouched(t *testing.T) {
	images := tensor.Randn(tensor.Shape{2, 1, 3, 3})
	before := images.Clone()

	WithRotations(images)
	assert.True(t, before.Equal(images))
}

func TestWithRotationsPanics(t *testing.T) {
	assert.Panics(t, func() { WithRotations(tensor.New(tensor.Shape{2, 3, 3})) })
	assert.Panics(t, func() { WithRotations(tensor.New(tensor.Shape{1, 1, 3, 4})) })
}

func TestPretextDataset(t *testing.T) {
	base := data.SyntheticImages(5, tensor.Shape{1, 6, 6}, 2, 3)
	pretext := PretextDataset(base)

	assert.Equal(t, 20, pretext.Len())
	assert.Equal(t, NumRotations, pretext.NumClasses())
	assert.Equal(t, tensor.Shape{1, 6, 6}, pretext.SampleShape())
}
