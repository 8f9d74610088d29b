package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/paissadb/internal/http/middleware"
	"github.com/yungbote/paissadb/internal/http/response"
	"github.com/yungbote/paissadb/internal/ingest"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/services"
	"github.com/yungbote/paissadb/internal/types"
)

type WardInfoHandler struct {
	log           *logger.Logger
	ingestService services.IngestService
}

func NewWardInfoHandler(log *logger.Logger, ingestService services.IngestService) *WardInfoHandler {
	return &WardInfoHandler{
		log:           log.With("handler", "WardInfoHandler"),
		ingestService: ingestService,
	}
}

func (h *WardInfoHandler) IngestWardInfo(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrInvalidCredentials)
		return
	}

	var req types.WardInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.ingestService.IngestWardInfo(c.Request.Context(), claims.SweeperID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrUnknownPlot):
			response.RespondError(c, http.StatusUnprocessableEntity, "unknown_plot", err)
		case errors.Is(err, ingest.ErrPriceMismatch):
			response.RespondError(c, http.StatusUnprocessableEntity, "price_mismatch", err)
		default:
			response.RespondError(c, http.StatusInternalServerError, "internal", err)
		}
		return
	}
	response.RespondOK(c, result)
}
