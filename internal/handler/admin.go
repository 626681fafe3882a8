package handler

import (
	"net/http"

	"github.com/fundgate/fundgate/internal/engine"
	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	engine *engine.Engine
}

func NewAdminHandler(e *engine.Engine) *AdminHandler {
	return &AdminHandler{engine: e}
}

func (h *AdminHandler) ClaimFeePositions(c *gin.Context) {
	var req model.ClaimFeePositionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	resp, err := h.engine.ClaimFeePositions(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ExecuteCommands(c *gin.Context) {
	var req model.AdminCommandsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.engine.ExecuteAdminCommands(c.Request.Context(), req); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted", "commands": len(req.Commands)})
}

func (h *AdminHandler) CloseFund(c *gin.Context) {
	var req model.CloseFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.engine.CloseFund(c.Request.Context(), req); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
