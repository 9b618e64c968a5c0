// Package serialization implements the parameter snapshot format used by the
// deepnotes examples.
//
// A snapshot is a little-endian binary state dictionary:
//
//	magic   uint32  ("DNS1")
//	version uint32
//	count   uint32
//	entries, each:
//	    nameLen uint32, name bytes
//	    ndims   uint32, dims []uint32
//	    data    []float32
//
// Entries are written in sorted name order so snapshots are byte-stable for
// a given parameter mapping.
package serialization

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

const (
	magic         = uint32(0x31534E44) // "DNS1" little-endian
	formatVersion = uint32(1)
)

// WriteStateDict writes a parameter mapping to path.
func WriteStateDict(path string, dict map[string]*tensor.Tensor) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create snapshot")
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	names := make([]string, 0, len(dict))
	for name := range dict {
		names = append(names, name)
	}
	sort.Strings(names)

	header := []uint32{magic, formatVersion, uint32(len(names))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for _, name := range names {
		t := dict[name]
		if err := binary.Write(w, binary.LittleEndian, uint32(len(name))); err != nil {
			return errors.Wrapf(err, "write entry %q", name)
		}
		if _, err := w.WriteString(name); err != nil {
			return errors.Wrapf(err, "write entry %q", name)
		}

		shape := t.Shape()
		dims := make([]uint32, len(shape))
		for i, d := range shape {
			dims[i] = uint32(d)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(dims))); err != nil {
			return errors.Wrapf(err, "write entry %q", name)
		}
		if err := binary.Write(w, binary.LittleEndian, dims); err != nil {
			return errors.Wrapf(err, "write entry %q", name)
		}
		if err := binary.Write(w, binary.LittleEndian, t.Data()); err != nil {
			return errors.Wrapf(err, "write entry %q", name)
		}
	}

	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush snapshot")
	}
	return nil
}

// ReadStateDict reads a parameter mapping from path.
func ReadStateDict(path string) (map[string]*tensor.Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var header [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if header[0] != magic {
		return nil, errors.Errorf("not a snapshot file: bad magic 0x%08x", header[0])
	}
	if header[1] != formatVersion {
		return nil, errors.Errorf("unsupported snapshot version %d", header[1])
	}

	count := int(header[2])
	dict := make(map[string]*tensor.Tensor, count)
	for i := 0; i < count; i++ {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, errors.Wrapf(err, "read entry %d", i)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, errors.Wrapf(err, "read entry %d", i)
		}
		name := string(nameBytes)

		var ndims uint32
		if err := binary.Read(r, binary.LittleEndian, &ndims); err != nil {
			return nil, errors.Wrapf(err, "read entry %q", name)
		}
		dims := make([]uint32, ndims)
		if err := binary.Read(r, binary.LittleEndian, dims); err != nil {
			return nil, errors.Wrapf(err, "read entry %q", name)
		}
		shape := make(tensor.Shape, len(dims))
		for j, d := range dims {
			shape[j] = int(d)
		}

		data := make([]float32, shape.NumElements())
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, errors.Wrapf(err, "read entry %q", name)
		}
		t, err := tensor.FromSlice(data, shape)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %q", name)
		}
		dict[name] = t
	}
	return dict, nil
}
