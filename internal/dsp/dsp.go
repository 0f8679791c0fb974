// Package dsp provides the pure signal transforms applied to captured audio
// before speech recognition: mono mixdown, linear resampling, and peak
// normalization.
package dsp

import "math"

const (
	// TargetRate is the sample rate every preprocessed session ends up at.
	TargetRate = 16000

	// normalizeTargetPeak is the peak amplitude Normalize scales toward.
	normalizeTargetPeak = 0.95
	// normalizeSilenceFloor is the peak below which input is left untouched.
	normalizeSilenceFloor = 0.001
	// normalizeMaxGain caps amplification so quiet hiss is not exaggerated.
	normalizeMaxGain = 30.0
)

// ToMono averages interleaved frames down to a single channel. A trailing
// partial frame is dropped.
func ToMono(samples []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}

	frames := len(samples) / channels
	out := make([]float32, 0, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out = append(out, sum/float32(channels))
	}
	return out
}

// Resample converts samples from sourceRate to targetRate using linear
// interpolation. Equal rates return a copy unchanged.
func Resample(samples []float32, sourceRate int, targetRate int) []float32 {
	if sourceRate == targetRate || sourceRate <= 0 || targetRate <= 0 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}

	ratio := float64(sourceRate) / float64(targetRate)
	outputLen := int(float64(len(samples)) / ratio)
	out := make([]float32, 0, outputLen)

	for i := 0; i < outputLen; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		var sample float64
		switch {
		case idx+1 < len(samples):
			sample = float64(samples[idx])*(1.0-frac) + float64(samples[idx+1])*frac
		case idx < len(samples):
			sample = float64(samples[idx])
		default:
			sample = 0.0
		}
		out = append(out, float32(sample))
	}
	return out
}

// Normalize scales samples so the peak magnitude reaches the target peak.
// Near-silent input is returned unchanged and gain is capped so the noise
// floor is never amplified into audible hiss.
func Normalize(samples []float32) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)

	var peak float64
	for _, s := range out {
		if mag := math.Abs(float64(s)); mag > peak {
			peak = mag
		}
	}
	if peak < normalizeSilenceFloor {
		return out
	}

	gain := normalizeTargetPeak / peak
	if gain > normalizeMaxGain {
		gain = normalizeMaxGain
	}
	for i := range out {
		out[i] = float32(float64(out[i]) * gain)
	}
	return out
}

// RMSEnergy returns the root-mean-square energy of samples, 0 for empty input.
func RMSEnergy(samples []float32) float64 {
	if len(samples) == 0 {
		return 0.0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Preprocess runs the full chain applied to every captured or imported
// recording: mono mixdown, resample to TargetRate, then peak normalization.
// The order is a contract relied on by the recorder and engines.
func Preprocess(samples []float32, channels int, sampleRate int) []float32 {
	mono := ToMono(samples, channels)
	resampled := Resample(mono, sampleRate, TargetRate)
	return Normalize(resampled)
}
