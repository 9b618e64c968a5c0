package data

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// CIFAR-10 binary format: each record is 1 label byte followed by 3072
// pixel bytes (1024 red, 1024 green, 1024 blue, row-major 32x32).
const (
	cifarImageBytes  = 3 * 32 * 32
	cifarRecordBytes = 1 + cifarImageBytes
)

// CIFAR10Classes are the class names in label order.
var CIFAR10Classes = []string{
	"airplane", "automobile", "bird", "cat", "deer",
	"dog", "frog", "horse", "ship", "truck",
}

// LoadCIFAR10 loads the CIFAR-10 training or test split from dir, which must
// contain the extracted binary batches (data_batch_1.bin .. data_batch_5.bin
// and test_batch.bin).
//
// Pixels are scaled to [0, 1]; samples have shape [3, 32, 32], channels
// first as stored on disk.
func LoadCIFAR10(dir string, train bool) (*Dataset, error) {
	files := []string{"test_batch.bin"}
	if train {
		files = []string{
			"data_batch_1.bin", "data_batch_2.bin", "data_batch_3.bin",
			"data_batch_4.bin", "data_batch_5.bin",
		}
	}

	var images [][]float32
	var labels []int
	for _, name := range files {
		imgs, lbls, err := readCIFARBatch(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		images = append(images, imgs...)
		labels = append(labels, lbls...)
	}

	return NewClassification(tensor.Shape{3, 32, 32}, images, labels), nil
}

func readCIFARBatch(path string) ([][]float32, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cifar10: open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cifar10: stat %s", path)
	}
	if info.Size()%cifarRecordBytes != 0 {
		return nil, nil, errors.Errorf("cifar10: %s: size %d is not a multiple of record size %d",
			path, info.Size(), cifarRecordBytes)
	}

	count := int(info.Size() / cifarRecordBytes)
	images := make([][]float32, 0, count)
	labels := make([]int, 0, count)
	record := make([]byte, cifarRecordBytes)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(f, record); err != nil {
			return nil, nil, errors.Wrapf(err, "cifar10: read record %d of %s", i, path)
		}
		label := int(record[0])
		if label > 9 {
			return nil, nil, errors.Errorf("cifar10: %s: record %d has label %d", path, i, label)
		}
		img := make([]float32, cifarImageBytes)
		for j, b := range record[1:] {
			img[j] = float32(b) / 255.0
		}
		images = append(images, img)
		labels = append(labels, label)
	}
	return images, labels, nil
}
