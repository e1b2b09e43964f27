// Package handlers implements the HTTP-facing request parsing and response
// shaping for the extraction API (§6); all pipeline logic itself lives in
// internal/pipeline.
package handlers

import (
	"io"
	"strconv"

	"github.com/okieraised/faceid-gateway/internal/apierr"
	"github.com/okieraised/faceid-gateway/internal/imaging"
	"github.com/okieraised/faceid-gateway/internal/observability"
	"github.com/okieraised/faceid-gateway/internal/pipeline"
	"github.com/okieraised/faceid-gateway/internal/reqctx"
	"github.com/okieraised/faceid-gateway/internal/response"

	"github.com/gin-gonic/gin"
)

// ExtractHandler exposes the general and anti-spoofing pipelines under
// /api/v2/extract.
type ExtractHandler struct {
	orchestrator *pipeline.Orchestrator
}

func NewExtractHandler(orchestrator *pipeline.Orchestrator) *ExtractHandler {
	return &ExtractHandler{orchestrator: orchestrator}
}

func readImage(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("images")
	if err != nil {
		return nil, apierr.Wrap(apierr.InputInvalid, "missing required \"images\" field", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apierr.Wrap(apierr.InputInvalid, "could not open uploaded image", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apierr.Wrap(apierr.InputInvalid, "could not read uploaded image", err)
	}
	return data, nil
}

func formBool(c *gin.Context, key string, def bool) bool {
	v := c.PostForm(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// General handles POST /api/v2/extract/general.
func (h *ExtractHandler) General(c *gin.Context) {
	reqID := reqctx.RequestID(c)

	data, err := readImage(c)
	if err != nil {
		c.Error(err)
		return
	}

	img, err := imaging.Decode(data)
	if err != nil {
		c.Error(err)
		return
	}
	defer img.Close()

	isEnroll := formBool(c, "is_enroll", false)

	result, err := h.orchestrator.General(c.Request.Context(), img, isEnroll)
	if err != nil {
		observability.RequestsTotal.WithLabelValues("general", "error").Inc()
		c.Error(err)
		return
	}
	observability.RequestsTotal.WithLabelValues("general", "ok").Inc()
	observability.FacesDetected.Observe(float64(result.FaceCount))

	payload := gin.H{"face_count": result.FaceCount}
	if result.FaceQuality != nil {
		payload["face_quality"] = result.FaceQuality.String()
	}
	if result.QualityScore != nil {
		payload["quality_score"] = *result.QualityScore
	}
	if result.FacialFeature != nil {
		payload["facial_feature"] = result.FacialFeature
	}

	c.JSON(200, response.OK(reqID, payload))
}

// AntiSpoofing handles POST /api/v2/extract/anti-spoofing.
func (h *ExtractHandler) AntiSpoofing(c *gin.Context) {
	reqID := reqctx.RequestID(c)

	data, err := readImage(c)
	if err != nil {
		c.Error(err)
		return
	}

	img, err := imaging.Decode(data)
	if err != nil {
		c.Error(err)
		return
	}
	defer img.Close()

	isEnroll := formBool(c, "is_enroll", false)
	spoofingCheck := formBool(c, "spoofing_check", false)

	result, err := h.orchestrator.AntiSpoofingPipeline(c.Request.Context(), img, isEnroll, spoofingCheck)
	if err != nil {
		observability.RequestsTotal.WithLabelValues("anti-spoofing", "error").Inc()
		c.Error(err)
		return
	}
	observability.RequestsTotal.WithLabelValues("anti-spoofing", "ok").Inc()
	observability.FacesDetected.Observe(float64(result.FaceCount))

	payload := gin.H{"face_count": result.FaceCount}
	if result.FaceQuality != nil {
		payload["face_quality"] = result.FaceQuality.String()
	}
	if result.SpoofingCheck != nil {
		payload["spoofing_check"] = result.SpoofingCheck.String()
	}
	if result.FacialFeature != nil {
		payload["facial_feature"] = result.FacialFeature
	}

	c.JSON(200, response.OK(reqID, payload))
}
