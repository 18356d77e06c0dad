package media

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/aurayouth/server/domain/entities"
)

const (
	// maxDuration caps how much audio is analyzed.
	maxDuration = 30 // seconds

	frameSize = 2048
	hopSize   = 512

	// Pitch search range, roughly C2..C7.
	pitchMin = 65.0
	pitchMax = 2093.0
)

// AudioAnalyzer extracts coarse signal features from a WAV file and maps them
// to an emotion with fixed threshold rules. It is a heuristic stand-in for a
// real voice-emotion model.
type AudioAnalyzer struct {
	logger *zap.Logger
}

// NewAudioAnalyzer creates a new audio analyzer.
func NewAudioAnalyzer(logger *zap.Logger) *AudioAnalyzer {
	return &AudioAnalyzer{logger: logger}
}

// Analyze decodes the file and classifies it. Any decode failure degrades to
// a neutral result carrying the error, never an error return.
func (a *AudioAnalyzer) Analyze(path string) entities.ModalityResult {
	samples, sampleRate, err := decodeWAV(path)
	if err != nil {
		a.logger.Warn("Audio analysis failed",
			zap.String("path", path),
			zap.Error(err))
		return entities.ModalityResult{
			Emotion:    entities.EmotionNeutral,
			Confidence: 0.5,
			Error:      err.Error(),
		}
	}

	if maxSamples := maxDuration * sampleRate; len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}

	features := extractFeatures(samples, sampleRate)
	emotion, confidence := classifyFeatures(features)

	return entities.ModalityResult{
		Emotion:    emotion,
		Confidence: confidence,
		Features:   &features,
	}
}

// classifyFeatures applies three mutually exclusive threshold rules.
func classifyFeatures(f entities.AudioFeatures) (entities.EmotionLabel, float64) {
	switch {
	// High pitch + high energy reads as excited.
	case f.PitchMean > 200 && f.EnergyMean > 0.1:
		return entities.EmotionExcited, 0.7
	// Low pitch + low energy reads as sad.
	case f.PitchMean < 150 && f.EnergyMean < 0.05:
		return entities.EmotionSad, 0.6
	// Noisy and energetic reads as anxious.
	case f.ZCRMean > 0.1 && f.EnergyMean > 0.08:
		return entities.EmotionAnxious, 0.65
	default:
		return entities.EmotionNeutral, 0.5
	}
}

// decodeWAV returns the file as a mono float waveform in [-1, 1].
func decodeWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("empty audio stream")
	}

	return toMono(buf), buf.Format.SampleRate, nil
}

func toMono(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := float64(int(1) << (buf.SourceBitDepth - 1))
	if buf.SourceBitDepth == 0 {
		scale = float64(1 << 15)
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float64(channels)
	}
	return samples
}

// extractFeatures computes frame-averaged pitch, RMS energy, spectral
// centroid and zero-crossing rate.
func extractFeatures(samples []float64, sampleRate int) entities.AudioFeatures {
	var (
		rmsSum, zcrSum, centroidSum float64
		pitchSum                    float64
		frameCount, pitchedFrames   int
	)

	for start := 0; start+frameSize <= len(samples); start += hopSize {
		frame := samples[start : start+frameSize]
		frameCount++

		rmsSum += frameRMS(frame)
		zcrSum += frameZCR(frame)
		centroidSum += spectralCentroid(frame, sampleRate)

		if f0 := framePitch(frame, sampleRate); f0 > 0 {
			pitchSum += f0
			pitchedFrames++
		}
	}

	if frameCount == 0 {
		// Shorter than one frame; fall back to whole-signal measures.
		return entities.AudioFeatures{
			EnergyMean: frameRMS(samples),
			ZCRMean:    frameZCR(samples),
		}
	}

	features := entities.AudioFeatures{
		EnergyMean:   rmsSum / float64(frameCount),
		ZCRMean:      zcrSum / float64(frameCount),
		CentroidMean: centroidSum / float64(frameCount),
	}
	if pitchedFrames > 0 {
		features.PitchMean = pitchSum / float64(pitchedFrames)
	}
	return features
}

func frameRMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func frameZCR(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}

// framePitch estimates the fundamental frequency of a frame via normalized
// autocorrelation. Returns 0 when no clear pitch is present.
func framePitch(frame []float64, sampleRate int) float64 {
	minLag := int(float64(sampleRate) / pitchMax)
	maxLag := int(float64(sampleRate) / pitchMin)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag >= maxLag {
		return 0
	}

	var energy float64
	for _, s := range frame {
		energy += s * s
	}
	if energy == 0 {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		corr /= energy
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	// Require a reasonably strong periodicity peak.
	if bestLag == 0 || bestCorr < 0.3 {
		return 0
	}
	return float64(sampleRate) / float64(bestLag)
}

// spectralCentroid is the magnitude-weighted mean frequency of the frame.
func spectralCentroid(frame []float64, sampleRate int) float64 {
	spectrum := fft(frame)
	half := len(spectrum) / 2

	var weighted, total float64
	for k := 1; k < half; k++ {
		mag := cmplx.Abs(spectrum[k])
		freq := float64(k) * float64(sampleRate) / float64(len(spectrum))
		weighted += mag * freq
		total += mag
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// fft is an iterative radix-2 transform; the input is zero-padded to the next
// power of two.
func fft(samples []float64) []complex128 {
	n := 1
	for n < len(samples) {
		n <<= 1
	}

	buf := make([]complex128, n)
	for i, s := range samples {
		buf[i] = complex(s, 0)
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wl := cmplx.Exp(complex(0, angle))
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			for k := 0; k < length/2; k++ {
				u := buf[start+k]
				v := buf[start+k+length/2] * w
				buf[start+k] = u + v
				buf[start+k+length/2] = u - v
				w *= wl
			}
		}
	}

	return buf
}
