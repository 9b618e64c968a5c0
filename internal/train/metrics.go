package train

// Accumulator tracks running loss and accuracy over a window of batches.
//
// The trainer keeps one per reporting window and resets it after each
// report, so logged numbers describe only the batches since the previous
// line rather than the whole epoch.
type Accumulator struct {
	lossSum float64
	correct int
	samples int
	batches int
}

// Observe folds in one batch's results.
func (a *Accumulator) Observe(loss float32, correct, samples int) {
	a.lossSum += float64(loss)
	a.correct += correct
	a.samples += samples
	a.batches++
}

// MeanLoss returns the average per-batch loss in the window, or 0 for an
// empty window.
func (a *Accumulator) MeanLoss() float32 {
	if a.batches == 0 {
		return 0
	}
	return float32(a.lossSum / float64(a.batches))
}

// Accuracy returns the fraction of correct predictions in the window, in
// [0, 1], or 0 for an empty window.
func (a *Accumulator) Accuracy() float32 {
	if a.samples == 0 {
		return 0
	}
	return float32(a.correct) / float32(a.samples)
}

// Samples returns the number of samples observed since the last reset.
func (a *Accumulator) Samples() int {
	return a.samples
}

// Batches returns the number of batches observed since the last reset.
func (a *Accumulator) Batches() int {
	return a.batches
}

// Reset clears the window.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
