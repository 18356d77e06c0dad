package media

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aurayouth/server/domain/entities"
)

const (
	brightHappy = 0.6
	brightSad   = 0.4
)

// VideoAnalyzer classifies sampled video frames by mean grayscale brightness,
// a placeholder for facial-expression analysis. The input path is either a
// single frame still or a directory of stills sampled at one frame per
// second.
type VideoAnalyzer struct {
	logger *zap.Logger
}

// NewVideoAnalyzer creates a new video analyzer.
func NewVideoAnalyzer(logger *zap.Logger) *VideoAnalyzer {
	return &VideoAnalyzer{logger: logger}
}

// Analyze classifies each sampled frame and takes the majority label, with
// confidence equal to the majority fraction. Any decode failure degrades to
// a neutral result carrying the error.
func (a *VideoAnalyzer) Analyze(path string) entities.ModalityResult {
	frames, err := framePaths(path)
	if err != nil {
		a.logger.Warn("Video analysis failed",
			zap.String("path", path),
			zap.Error(err))
		return entities.ModalityResult{
			Emotion:    entities.EmotionNeutral,
			Confidence: 0.5,
			Error:      err.Error(),
		}
	}

	counts := make(map[entities.EmotionLabel]int)
	var order []entities.EmotionLabel
	analyzed := 0
	for _, frame := range frames {
		brightness, err := frameBrightness(frame)
		if err != nil {
			a.logger.Warn("Skipping undecodable frame",
				zap.String("frame", frame),
				zap.Error(err))
			continue
		}
		analyzed++

		label := entities.EmotionNeutral
		if brightness > brightHappy {
			label = entities.EmotionHappy
		} else if brightness < brightSad {
			label = entities.EmotionSad
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	if analyzed == 0 {
		return entities.ModalityResult{
			Emotion:    entities.EmotionNeutral,
			Confidence: 0.5,
			Error:      "no decodable frames",
		}
	}

	// Majority vote; ties resolve to the label seen first.
	var majority entities.EmotionLabel
	best := 0
	for _, label := range order {
		if counts[label] > best {
			majority = label
			best = counts[label]
		}
	}

	return entities.ModalityResult{
		Emotion:    majority,
		Confidence: float64(best) / float64(analyzed),
		VideoInfo:  &entities.VideoInfo{FramesAnalyzed: analyzed},
	}
}

// framePaths expands the input into an ordered list of frame stills.
func framePaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading video input: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory: %w", err)
	}

	var frames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			frames = append(frames, filepath.Join(path, entry.Name()))
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frame images in %s", path)
	}

	sort.Strings(frames)
	return frames, nil
}

// frameBrightness returns the mean grayscale brightness of an image in [0, 1].
func frameBrightness(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decoding frame: %w", err)
	}

	bounds := img.Bounds()
	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// Luma over 16-bit channel values.
			gray := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			sum += gray / 65535.0
		}
	}

	pixels := float64(bounds.Dx() * bounds.Dy())
	if pixels == 0 {
		return 0, fmt.Errorf("empty frame")
	}
	return sum / pixels, nil
}
