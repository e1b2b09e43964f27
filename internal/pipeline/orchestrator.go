package pipeline

import (
	"context"
	"time"

	"github.com/okieraised/faceid-gateway/internal/apierr"
	"github.com/okieraised/faceid-gateway/internal/observability"

	"gocv.io/x/gocv"
)

// recordStage observes a stage's duration and, on failure, bumps the
// per-stage error counter keyed by error kind (§5's per-stage instrumentation).
func recordStage(stage string, start time.Time, err error) {
	observability.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}
	kind := "unknown"
	if ae, ok := apierr.As(err); ok {
		kind = ae.Kind.String()
	}
	observability.PipelineErrors.WithLabelValues(stage, kind).Inc()
}

// GeneralResult is the tagged outcome of the general pipeline (§4.12): the
// optional fields are nil/empty whenever the pipeline stops early (no face,
// no selectable face).
type GeneralResult struct {
	FaceCount     int
	FaceQuality   *QualityClass
	QualityScore  *float32
	FacialFeature []float32
}

// AntiSpoofingResult is the tagged outcome of the anti-spoofing pipeline.
type AntiSpoofingResult struct {
	FaceCount     int
	FaceQuality   *QualityClass
	SpoofingCheck *LivenessClass
	FacialFeature []float32
}

// Orchestrator wires the individual stages into the two request-facing
// pipelines (§4.12). It holds no per-request state.
type Orchestrator struct {
	Detector          *Detector
	Quality           *QualityClassifier
	QualityAssessment *QualityAssessment
	AntiSpoofing      *AntiSpoofing
	Extractor         *Extractor
}

// General runs Detect -> Select -> Align -> Quality -> Extract.
func (o *Orchestrator) General(ctx context.Context, img gocv.Mat, isEnroll bool) (*GeneralResult, error) {
	start := time.Now()
	det, err := o.Detector.Detect(ctx, img)
	recordStage("detect", start, err)
	if err != nil {
		return nil, err
	}
	result := &GeneralResult{FaceCount: len(det.Boxes)}
	if result.FaceCount == 0 {
		return result, nil
	}

	b, lm := Select(det, img.Cols(), img.Rows(), isEnroll)
	if b == nil {
		return result, nil
	}

	aligned, err := Align(img, b, lm)
	if err != nil {
		return nil, err
	}
	defer aligned.Close()

	start = time.Now()
	class, score, err := o.Quality.Classify(ctx, aligned)
	recordStage("quality", start, err)
	if err != nil {
		return nil, err
	}
	result.FaceQuality = &class
	result.QualityScore = &score

	start = time.Now()
	embedding, err := o.Extractor.Extract(ctx, aligned)
	recordStage("extraction", start, err)
	if err != nil {
		return nil, err
	}
	result.FacialFeature = embedding

	return result, nil
}

// AntiSpoofingPipeline runs Detect -> Select -> [liveness vote, never
// short-circuiting on a Fake verdict] -> Align -> Quality -> Quality
// assessment (always) -> a verify/enroll-specific embedding decision
// (§4.12, Open Question 3: spoofing_check never gates extraction).
func (o *Orchestrator) AntiSpoofingPipeline(ctx context.Context, img gocv.Mat, isEnroll, spoofingCheck bool) (*AntiSpoofingResult, error) {
	start := time.Now()
	det, err := o.Detector.Detect(ctx, img)
	recordStage("detect", start, err)
	if err != nil {
		return nil, err
	}
	result := &AntiSpoofingResult{FaceCount: len(det.Boxes)}
	if result.FaceCount == 0 {
		return result, nil
	}

	b, lm := Select(det, img.Cols(), img.Rows(), isEnroll)
	if b == nil {
		return result, nil
	}

	if spoofingCheck {
		start = time.Now()
		liveness, _, err := o.AntiSpoofing.Check(ctx, img, *b)
		recordStage("anti_spoofing", start, err)
		if err != nil {
			return nil, err
		}
		result.SpoofingCheck = &liveness
	}

	aligned, err := Align(img, b, lm)
	if err != nil {
		return nil, err
	}
	defer aligned.Close()

	start = time.Now()
	qClass, _, err := o.Quality.Classify(ctx, aligned)
	recordStage("quality", start, err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	qaClass, _, err := o.QualityAssessment.Assess(ctx, aligned)
	recordStage("quality_assessment", start, err)
	if err != nil {
		return nil, err
	}

	if !isEnroll {
		if qClass == QualityWearingMask {
			result.FaceQuality = &qClass
			return result, nil
		}
		start = time.Now()
		embedding, err := o.Extractor.Extract(ctx, aligned)
		recordStage("extraction", start, err)
		if err != nil {
			return nil, err
		}
		result.FaceQuality = &qClass
		result.FacialFeature = embedding
		return result, nil
	}

	// Enroll: only accept when both quality signals agree the face is Good.
	if qClass == QualityGood && qaClass == QualityGood {
		start = time.Now()
		embedding, err := o.Extractor.Extract(ctx, aligned)
		recordStage("extraction", start, err)
		if err != nil {
			return nil, err
		}
		result.FaceQuality = &qClass
		result.FacialFeature = embedding
		return result, nil
	}
	bad := QualityBad
	result.FaceQuality = &bad
	return result, nil
}
