package nn

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/deepnotes-ml/deepnotes/internal/serialization"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// StateDict returns a mapping from parameter key to value tensor.
//
// Keys are "<index>.<name>" over the model's flat parameter list (e.g.
// "0.weight", "1.bias"), which is stable for a fixed architecture.
func StateDict(model Layer) map[string]*tensor.Tensor {
	params := model.Parameters()
	dict := make(map[string]*tensor.Tensor, len(params))
	for i, p := range params {
		dict[fmt.Sprintf("%d.%s", i, p.Name())] = p.Data()
	}
	return dict
}

// LoadStateDict copies values from a state dictionary into the model's
// parameters. The model must have the same architecture the dictionary was
// produced from; missing keys and shape mismatches are errors.
func LoadStateDict(model Layer, dict map[string]*tensor.Tensor) error {
	for i, p := range model.Parameters() {
		key := fmt.Sprintf("%d.%s", i, p.Name())
		src, ok := dict[key]
		if !ok {
			return errors.Errorf("missing parameter %q in state dict", key)
		}
		if !src.Shape().Equal(p.Data().Shape()) {
			return errors.Errorf("parameter %q shape mismatch: expected %v, got %v",
				key, p.Data().Shape(), src.Shape())
		}
		copy(p.Data().Data(), src.Data())
	}
	return nil
}

// SaveState writes the model's parameters to a snapshot file.
func SaveState(path string, model Layer) error {
	return serialization.WriteStateDict(path, StateDict(model))
}

// LoadState restores the model's parameters from a snapshot file.
func LoadState(path string, model Layer) error {
	dict, err := serialization.ReadStateDict(path)
	if err != nil {
		return err
	}
	return LoadStateDict(model, dict)
}
