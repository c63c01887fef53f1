package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/call-insights/errors"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
)

// ListArchivedReports returns signed links to the archived insight reports of a call
// @Summary      Archived insight reports
// @Description  Every processing run of a call is archived to object storage; links expire after 15 minutes
// @Tags         Storage
// @Produce      json
// @Security     BearerAuth
// @Param        call_id  path      string  true  "Call id"
// @Success      200      {array}   insights.ArchivedReport
// @Failure      503      {object}  map[string]interface{}  "Storage not configured"
// @Router       /call-insights/{call_id}/reports [get]
func (h *Insights) ListArchivedReports(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	callID := c.Param("call_id")

	reports, err := h.svc.ArchivedReports(c.Request().Context(), callID, p.OrganizationID)
	if err != nil {
		switch {
		case stdErrors.Is(err, usecaseErrors.ErrArchiveDisabled):
			return HandleError(h.logger, c, errors.ErrAIServiceUnavailable("storage"))
		case stdErrors.Is(err, entities.ErrCallLogNotFound):
			return HandleError(h.logger, c, errors.ErrCallLogNotFound(callID))
		case stdErrors.Is(err, usecaseErrors.ErrForbidden):
			return HandleError(h.logger, c, err)
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("list reports", err))
	}
	return c.JSON(http.StatusOK, reports)
}
