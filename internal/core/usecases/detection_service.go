package usecases

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/ports"
)

const (
	defaultModelInfo          = "RT-DETR Obstruction Detection"
	demoModelInfo             = "Demo Mode - Obstruction Detection"
	defaultAnalysisConfidence = 0.85
)

var defaultImageSize = [2]int{350, 300}

// DetectionService turns raw model output into an obstruction report.
type DetectionService struct {
	detector     ports.Detector
	demoFallback bool
}

// NewDetectionService creates a new DetectionService. With demoFallback a
// detector transport failure yields the fixed demo report.
func NewDetectionService(detector ports.Detector, demoFallback bool) *DetectionService {
	return &DetectionService{detector: detector, demoFallback: demoFallback}
}

// Analyze sends the image to the detector and summarizes the result.
// A data-URL prefix ("data:image/jpeg;base64,") is stripped.
func (s *DetectionService) Analyze(ctx context.Context, image string) (*domain.DetectionResult, error) {
	image = stripDataURL(image)
	if image == "" {
		return nil, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	if _, err := base64.StdEncoding.DecodeString(image); err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", domain.ErrValidation)
	}

	raw, err := s.detector.Detect(ctx, image)
	if err != nil {
		if s.demoFallback && errors.Is(err, domain.ErrTransport) {
			slog.Warn("detector unavailable, using demo result", "error", err)
			return DemoDetectionResult(), nil
		}
		return nil, err
	}
	return SummarizeDetections(raw), nil
}

// SummarizeDetections classifies detections into person/animal/object and
// derives the obstruction analysis and navigation verdict.
func SummarizeDetections(raw *domain.RawDetectionResult) *domain.DetectionResult {
	if raw == nil {
		raw = &domain.RawDetectionResult{}
	}

	var persons, animals, objects int
	detections := make([]domain.Detection, 0, len(raw.Detections))
	for _, d := range raw.Detections {
		class := classifyObstruction(d.ClassName)
		switch class {
		case domain.ClassPerson:
			persons++
		case domain.ClassAnimal:
			animals++
		default:
			objects++
		}
		d.ClassName = class
		detections = append(detections, d)
	}

	total := persons + animals + objects
	has := total > 0

	res := &domain.DetectionResult{
		Detections:     detections,
		ImageSize:      defaultImageSize,
		ProcessingTime: raw.ProcessingTime,
		ModelInfo:      raw.ModelInfo,
		AnnotatedImage: raw.AnnotatedImage,
		ObstructionAnalysis: domain.ObstructionAnalysis{
			HasObstruction:   has,
			ObstructionCount: total,
			AnimalCount:      animals,
			ObjectCount:      objects,
			PersonCount:      persons,
			Severity:         severity(total, 5),
			Confidence:       defaultAnalysisConfidence,
			StatusMessage:    statusMessage(total),
		},
	}
	if len(raw.ImageSize) == 2 {
		res.ImageSize = [2]int{raw.ImageSize[0], raw.ImageSize[1]}
	}
	if res.ModelInfo == "" {
		res.ModelInfo = defaultModelInfo
	}
	if raw.ObstructionAnalysis != nil && raw.ObstructionAnalysis.Confidence != 0 {
		res.ObstructionAnalysis.Confidence = raw.ObstructionAnalysis.Confidence
	}

	blocked := persons > 0 || total > 3
	res.Navigation = domain.Navigation{
		CanProceed:        !has,
		RecommendedAction: domain.ActionProceed,
		PathStatus:        domain.PathClear,
		SafetyScore:       100,
	}
	if has {
		res.Navigation.SafetyScore = max(5, 100-total*10)
		if blocked {
			res.Navigation.RecommendedAction = domain.ActionStopAndWait
			res.Navigation.PathStatus = domain.PathBlocked
		} else {
			res.Navigation.RecommendedAction = domain.ActionProceedWithCaution
			res.Navigation.PathStatus = domain.PathCaution
		}
	}
	return res
}

// DemoDetectionResult is the canned report shown when the model is offline.
func DemoDetectionResult() *domain.DetectionResult {
	detections := []domain.Detection{
		{BBox: [4]float64{50, 80, 200, 180}, Confidence: 0.92, ClassID: 0, ClassName: domain.ClassAnimal},
		{BBox: [4]float64{220, 120, 320, 220}, Confidence: 0.87, ClassID: 1, ClassName: domain.ClassPerson},
		{BBox: [4]float64{30, 200, 120, 280}, Confidence: 0.75, ClassID: 2, ClassName: domain.ClassObject},
	}
	total := len(detections)
	return &domain.DetectionResult{
		Detections:     detections,
		ImageSize:      defaultImageSize,
		ProcessingTime: 1.23,
		ModelInfo:      demoModelInfo,
		ObstructionAnalysis: domain.ObstructionAnalysis{
			HasObstruction:   true,
			ObstructionCount: total,
			AnimalCount:      1,
			ObjectCount:      1,
			PersonCount:      1,
			Severity:         severity(total, 2),
			Confidence:       0.87,
			StatusMessage:    fmt.Sprintf("%d OBSTRUCTION(S) DETECTED", total),
		},
		Navigation: domain.Navigation{
			CanProceed:        false,
			RecommendedAction: domain.ActionStopAndWait,
			PathStatus:        domain.PathBlocked,
			SafetyScore:       max(10, 100-total*30),
		},
		Demo: true,
	}
}

func classifyObstruction(className string) string {
	c := strings.ToLower(className)
	switch {
	case strings.Contains(c, "person"), strings.Contains(c, "people"):
		return domain.ClassPerson
	case strings.Contains(c, "animal"), strings.Contains(c, "cattle"),
		strings.Contains(c, "cow"), strings.Contains(c, "livestock"):
		return domain.ClassAnimal
	default:
		return domain.ClassObject
	}
}

func severity(total, highAbove int) string {
	switch {
	case total > highAbove:
		return domain.SeverityHigh
	case total > 0:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func statusMessage(total int) string {
	switch {
	case total == 0:
		return "PATH CLEAR"
	case total == 1:
		return "1 OBSTRUCTION DETECTED"
	default:
		return fmt.Sprintf("%d OBSTRUCTIONS DETECTED", total)
	}
}

func stripDataURL(image string) string {
	image = strings.TrimSpace(image)
	if strings.HasPrefix(image, "data:") {
		if i := strings.Index(image, ","); i >= 0 {
			return image[i+1:]
		}
	}
	return image
}
