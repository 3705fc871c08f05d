package trainer

import "github.com/pkg/errors"

// WeightsLoader restores encoder weights from a checkpoint file. The
// reference encoder satisfies it.
type WeightsLoader interface {
	ReadZlibWeightsFromFile(name string) error
}

// Resume loads a previous checkpoint into the encoder when resume is
// set. A missing or mismatched checkpoint is fatal: silently training a
// fresh model when the caller asked to continue one would be worse.
func Resume(model WeightsLoader, resume bool, name string) error {
	if !resume || name == "" {
		return nil
	}
	return errors.Wrapf(model.ReadZlibWeightsFromFile(name), "resume from %s", name)
}
