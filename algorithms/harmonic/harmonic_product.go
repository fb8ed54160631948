package harmonic

// HarmonicProduct implements the Harmonic Product Spectrum for F0 estimation.
//
//	hps[i] = m[i] * m[2i] * ... * m[Ni]
//
// Harmonics that fall past the end of the spectrum are skipped rather than
// treated as zero, so high bins keep the product of the harmonics they have.
type HarmonicProduct struct {
	numHarmonics  int
	amplification float64
}

// NewHarmonicProduct creates a harmonic product spectrum calculator.
// amplification scales every magnitude before multiplication so that the
// product of small magnitudes does not underflow.
func NewHarmonicProduct(numHarmonics int, amplification float64) *HarmonicProduct {
	if numHarmonics < 1 {
		numHarmonics = 1
	}
	if amplification <= 0 {
		amplification = 1
	}
	return &HarmonicProduct{
		numHarmonics:  numHarmonics,
		amplification: amplification,
	}
}

// ComputeHPS computes the Harmonic Product Spectrum from a magnitude spectrum
func (hp *HarmonicProduct) ComputeHPS(magnitudeSpectrum []float64) []float64 {
	n := len(magnitudeSpectrum)
	hps := make([]float64, n)
	if n == 0 {
		return hps
	}

	amplified := make([]float64, n)
	for i, mag := range magnitudeSpectrum {
		amplified[i] = mag * hp.amplification
	}

	for i := range n {
		product := amplified[i]
		for h := 2; h <= hp.numHarmonics; h++ {
			idx := i * h
			if idx >= n {
				break
			}
			product *= amplified[idx]
		}
		hps[i] = product
	}

	return hps
}
