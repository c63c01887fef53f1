package handler

import (
	"encoding/json"
	stdErrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/errors"
	insightsDTO "github.com/johnquangdev/call-insights/internal/adapter/dto/insights"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/pkg/ai"
)

// maxWebhookBody bounds the size of a call webhook body
const maxWebhookBody = 10 << 20

// WebhookHandler receives signed call ingestion webhooks
type WebhookHandler struct {
	svc    InsightsService
	secret string
	logger *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(svc InsightsService, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret, logger: logger}
}

// HandleCallWebhook stores a finished call and queues it for insights
// @Summary      Call ingestion webhook
// @Description  Body is signed with HMAC-SHA256 of the webhook secret, hex encoded in X-Signature
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        X-Signature  header    string                          true  "hex HMAC-SHA256 of the body"
// @Param        request      body      insightsDTO.CallWebhookRequest  true  "Call"
// @Success      202          {object}  insightsDTO.QueuedResponse
// @Failure      401          {object}  map[string]interface{}
// @Failure      413          {object}  map[string]interface{}
// @Router       /webhooks/calls [post]
func (h *WebhookHandler) HandleCallWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if len(body) > maxWebhookBody {
		return HandleError(h.logger, c, errors.ErrPayloadTooLarge(maxWebhookBody))
	}

	if !ai.VerifyHMAC(h.secret, body, c.Request().Header.Get(ai.SignatureHeader)) {
		h.logger.Warn("⚠️ Rejected webhook with bad signature", zap.String("remote_ip", c.RealIP()))
		return HandleError(h.logger, c, errors.ErrInvalidSignature())
	}

	var req insightsDTO.CallWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	callLog, err := callLogFromWebhook(&req)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	h.logger.Info("📥 Call webhook received",
		zap.String("call_id", callLog.CallID),
		zap.Bool("has_transcription", callLog.HasTranscription()),
	)
	if err := h.svc.IngestCall(c.Request().Context(), callLog); err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrQueueFull) || stdErrors.Is(err, usecaseErrors.ErrForbidden) {
			return HandleError(h.logger, c, err)
		}
		return HandleError(h.logger, c, errors.ErrInsightsFailed(callLog.CallID, err))
	}
	return c.JSON(http.StatusAccepted, insightsDTO.QueuedResponse{
		Message: "Call accepted",
		CallID:  callLog.CallID,
	})
}

// callLogFromWebhook builds the call log. A transcription sent as a JSON
// document is stored as its JSON text.
func callLogFromWebhook(req *insightsDTO.CallWebhookRequest) (*entities.CallLog, error) {
	callDate := time.Now().UTC()
	callLog := &entities.CallLog{
		CallID:     req.CallID,
		SalesRepID: req.SalesRepID,
		CallDate:   &callDate,
	}
	if req.OrganizationID != nil && *req.OrganizationID != "" {
		orgID, err := uuid.Parse(*req.OrganizationID)
		if err != nil {
			return nil, errors.ErrInvalidArgument("organization_id must be a UUID")
		}
		callLog.OrganizationID = &orgID
	}
	if req.RecordingURL != "" {
		url := req.RecordingURL
		callLog.RecordingURL = &url
	}
	text, err := transcriptText(req.Transcription)
	if err != nil {
		return nil, errors.ErrInvalidArgument("transcription must be text or a transcript document")
	}
	if text != "" {
		callLog.Transcription = &text
	}
	if callLog.Transcription == nil && callLog.RecordingURL == nil {
		return nil, errors.ErrInvalidArgument("transcription or recording_url is required")
	}
	return callLog, nil
}
