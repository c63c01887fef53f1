package handler

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/errors"
	insightsDTO "github.com/johnquangdev/call-insights/internal/adapter/dto/insights"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/internal/usecase/insights"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InsightsService is the subset of the insight use cases the HTTP layer calls
type InsightsService interface {
	ListTranscripts(ctx context.Context) ([]string, error)
	ReadTranscript(ctx context.Context, id string) (json.RawMessage, error)
	AnalyzeCall(ctx context.Context, text, transcriptID string) (*entities.PostCallAnalysis, error)
	GetCallInsights(ctx context.Context, callID string, orgID *uuid.UUID) (json.RawMessage, error)
	ProcessCallInsights(ctx context.Context, callID string, orgID *uuid.UUID) (json.RawMessage, error)
	Output(ctx context.Context) (insights.Result, error)
	ExportInsights(ctx context.Context, orgID *uuid.UUID) ([]byte, error)
	TranscribeCall(ctx context.Context, in insights.TranscribeInput) (*entities.CallLog, error)
	IngestCall(ctx context.Context, callLog *entities.CallLog) error
	ArchivedReports(ctx context.Context, callID string, orgID *uuid.UUID) ([]insights.ArchivedReport, error)
}

// Insights handles transcript, analysis and call insight requests
type Insights struct {
	svc    InsightsService
	logger *zap.Logger
}

// NewInsights creates a new insights handler
func NewInsights(svc InsightsService, logger *zap.Logger) *Insights {
	return &Insights{svc: svc, logger: logger}
}

// ListTranscripts
// @Summary      List transcripts
// @Tags         Transcripts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   insightsDTO.TranscriptFile
// @Router       /transcripts [get]
func (h *Insights) ListTranscripts(c echo.Context) error {
	names, err := h.svc.ListTranscripts(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	files := make([]insightsDTO.TranscriptFile, 0, len(names))
	for _, name := range names {
		files = append(files, insightsDTO.TranscriptFile{ID: name, Name: name, Path: name})
	}
	return c.JSON(http.StatusOK, files)
}

// GetTranscript returns a transcript file as stored
// GET /api/transcripts/:id
func (h *Insights) GetTranscript(c echo.Context) error {
	id := c.Param("id")
	raw, err := h.svc.ReadTranscript(c.Request().Context(), id)
	if err != nil {
		if stdErrors.Is(err, entities.ErrTranscriptNotFound) {
			return HandleError(h.logger, c, errors.ErrTranscriptNotFound(id))
		}
		return HandleError(h.logger, c, err)
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// Analyze runs the post-call analysis
// @Summary      Post-call analysis
// @Description  Analyzes an inline transcript, or a stored one when only transcript_id is given
// @Tags         Insights
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      insightsDTO.AnalyzeRequest  true  "Transcript"
// @Success      200      {object}  entities.PostCallAnalysis
// @Failure      400      {object}  map[string]interface{}  "No transcript provided"
// @Failure      404      {object}  map[string]interface{}  "Transcript file not found"
// @Failure      500      {object}  map[string]interface{}  "AI analysis failed"
// @Router       /analyze [post]
func (h *Insights) Analyze(c echo.Context) error {
	var req insightsDTO.AnalyzeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	text, err := transcriptText(req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("transcript must be text or a transcript document"))
	}

	analysis, err := h.svc.AnalyzeCall(c.Request().Context(), text, req.TranscriptID)
	if err != nil {
		switch {
		case stdErrors.Is(err, entities.ErrTranscriptNotFound):
			return HandleError(h.logger, c, errors.ErrTranscriptNotFound(req.TranscriptID))
		case stdErrors.Is(err, usecaseErrors.ErrNoTranscriptProvided),
			stdErrors.Is(err, usecaseErrors.ErrInvalidTranscriptID):
			return HandleError(h.logger, c, err)
		}
		return HandleError(h.logger, c, errors.ErrAIAnalysisFailed(err))
	}
	return c.JSON(http.StatusOK, analysis)
}

// transcriptText accepts a JSON string or any other JSON value, which is sent as its text
func transcriptText(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return trimmed, nil
}

// GetCallInsights returns the stored insights of a call, processing it on first access
// @Summary      Call insights
// @Tags         Insights
// @Produce      json
// @Security     BearerAuth
// @Param        call_id  path      string  true  "Call id, or the numeric call log id"
// @Success      200      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]interface{}  "No insights found"
// @Router       /call-insights/{call_id} [get]
func (h *Insights) GetCallInsights(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	callID := c.Param("call_id")

	doc, err := h.svc.GetCallInsights(c.Request().Context(), callID, p.OrganizationID)
	if err != nil {
		switch {
		case stdErrors.Is(err, entities.ErrCallLogNotFound):
			return HandleError(h.logger, c, errors.ErrCallLogNotFound(callID))
		case stdErrors.Is(err, usecaseErrors.ErrInsightsNotFound):
			return HandleError(h.logger, c, errors.ErrInsightsNotFound(callID))
		}
		return HandleError(h.logger, c, err)
	}
	return c.JSONBlob(http.StatusOK, doc)
}

// ProcessCallInsights reruns the analyzers for a call and returns the new insights
// POST /api/process-insights/:call_id
func (h *Insights) ProcessCallInsights(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	callID := c.Param("call_id")

	doc, err := h.svc.ProcessCallInsights(c.Request().Context(), callID, p.OrganizationID)
	if err != nil {
		switch {
		case stdErrors.Is(err, entities.ErrCallLogNotFound):
			return HandleError(h.logger, c, errors.ErrCallLogNotFound(callID))
		case stdErrors.Is(err, usecaseErrors.ErrNoTranscription):
			return HandleError(h.logger, c, errors.ErrNoTranscriptProvided().WithDetail("call_id", callID))
		case stdErrors.Is(err, usecaseErrors.ErrForbidden):
			return HandleError(h.logger, c, err)
		}
		return HandleError(h.logger, c, errors.ErrInsightsFailed(callID, err))
	}
	return c.JSONBlob(http.StatusOK, doc)
}

// Output aggregates the default transcript file
// GET /api/output
func (h *Insights) Output(c echo.Context) error {
	result, err := h.svc.Output(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrAIAnalysisFailed(err))
	}
	return c.JSON(http.StatusOK, result)
}

// ExportInsights downloads the organization's processed calls as a spreadsheet
// @Summary      Export insights
// @Tags         Insights
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200
// @Router       /call-insights/export [get]
func (h *Insights) ExportInsights(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	data, err := h.svc.ExportInsights(c.Request().Context(), p.OrganizationID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrReportExportFailed("xlsx", err))
	}

	filename := fmt.Sprintf("call-insights-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// TranscribeCall transcribes a recording and queues the call for insights
// @Summary      Transcribe recording
// @Tags         Insights
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      insightsDTO.TranscribeRequest  true  "Recording"
// @Success      202      {object}  insightsDTO.QueuedResponse
// @Failure      503      {object}  map[string]interface{}  "Transcription not configured or queue full"
// @Router       /calls/transcribe [post]
func (h *Insights) TranscribeCall(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req insightsDTO.TranscribeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	callLog, err := h.svc.TranscribeCall(c.Request().Context(), insights.TranscribeInput{
		CallID:         req.CallID,
		RecordingURL:   req.RecordingURL,
		SalesRepID:     req.SalesRepID,
		OrganizationID: p.OrganizationID,
	})
	if err != nil {
		switch {
		case stdErrors.Is(err, usecaseErrors.ErrTranscriberDisabled),
			stdErrors.Is(err, usecaseErrors.ErrQueueFull),
			stdErrors.Is(err, usecaseErrors.ErrForbidden):
			return HandleError(h.logger, c, err)
		}
		return HandleError(h.logger, c, errors.ErrAITranscriptionFailed(err))
	}

	h.logger.Info("🎙️ Recording transcribed", zap.String("call_id", callLog.CallID))
	return c.JSON(http.StatusAccepted, insightsDTO.QueuedResponse{
		Message: "Transcription stored, insights queued",
		CallID:  callLog.CallID,
	})
}
