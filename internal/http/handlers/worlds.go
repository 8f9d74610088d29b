package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/paissadb/internal/http/response"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/services"
)

type WorldHandler struct {
	log            *logger.Logger
	summaryService services.SummaryService
}

func NewWorldHandler(log *logger.Logger, summaryService services.SummaryService) *WorldHandler {
	return &WorldHandler{
		log:            log.With("handler", "WorldHandler"),
		summaryService: summaryService,
	}
}

func (h *WorldHandler) ListWorlds(c *gin.Context) {
	summaries, err := h.summaryService.GetAllWorldSummaries(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	response.RespondOK(c, summaries)
}

func (h *WorldHandler) GetWorld(c *gin.Context) {
	worldID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	detail, err := h.summaryService.GetWorldSummary(c.Request.Context(), worldID)
	if err != nil {
		if errors.Is(err, services.ErrWorldNotFound) {
			response.RespondError(c, http.StatusNotFound, "world_not_found", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	response.RespondOK(c, detail)
}
