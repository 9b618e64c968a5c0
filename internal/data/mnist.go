package data

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// IDX file format magic numbers (big-endian).
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// LoadMNIST loads the MNIST training or test split from dir, which must
// contain the decompressed IDX files (train-images-idx3-ubyte and friends).
//
// Pixels are scaled to [0, 1]; samples have shape [1, 28, 28].
func LoadMNIST(dir string, train bool) (*Dataset, error) {
	imagesFile := "t10k-images-idx3-ubyte"
	labelsFile := "t10k-labels-idx1-ubyte"
	if train {
		imagesFile = "train-images-idx3-ubyte"
		labelsFile = "train-labels-idx1-ubyte"
	}

	images, rows, cols, err := readIDXImages(filepath.Join(dir, imagesFile))
	if err != nil {
		return nil, err
	}
	labels, err := readIDXLabels(filepath.Join(dir, labelsFile))
	if err != nil {
		return nil, err
	}
	if len(images) != len(labels) {
		return nil, errors.Errorf("mnist: %d images but %d labels", len(images), len(labels))
	}

	return NewClassification(tensor.Shape{1, rows, cols}, images, labels), nil
}

// readIDXImages reads an IDX3 image file and returns one normalized
// float32 slice per image.
func readIDXImages(path string) ([][]float32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, errors.Wrapf(err, "mnist: open %s", path)
	}
	defer f.Close()

	var header struct {
		Magic uint32
		Count uint32
		Rows  uint32
		Cols  uint32
	}
	if err := binary.Read(f, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, errors.Wrapf(err, "mnist: read header of %s", path)
	}
	if header.Magic != idxImagesMagic {
		return nil, 0, 0, errors.Errorf("mnist: %s: bad magic %d, want %d",
			path, header.Magic, idxImagesMagic)
	}

	pixels := int(header.Rows * header.Cols)
	raw := make([]byte, pixels)
	images := make([][]float32, header.Count)
	for i := range images {
		if _, err := io.ReadFull(f, raw); err != nil {
			return nil, 0, 0, errors.Wrapf(err, "mnist: read image %d of %s", i, path)
		}
		img := make([]float32, pixels)
		for j, b := range raw {
			img[j] = float32(b) / 255.0
		}
		images[i] = img
	}
	return images, int(header.Rows), int(header.Cols), nil
}

// readIDXLabels reads an IDX1 label file.
func readIDXLabels(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mnist: open %s", path)
	}
	defer f.Close()

	var header struct {
		Magic uint32
		Count uint32
	}
	if err := binary.Read(f, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrapf(err, "mnist: read header of %s", path)
	}
	if header.Magic != idxLabelsMagic {
		return nil, errors.Errorf("mnist: %s: bad magic %d, want %d",
			path, header.Magic, idxLabelsMagic)
	}

	raw := make([]byte, header.Count)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, errors.Wrapf(err, "mnist: read labels of %s", path)
	}
	labels := make([]int, header.Count)
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}
