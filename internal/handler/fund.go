package handler

import (
	"net/http"

	"github.com/fundgate/fundgate/internal/engine"
	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

type FundHandler struct {
	engine *engine.Engine
}

func NewFundHandler(e *engine.Engine) *FundHandler {
	return &FundHandler{engine: e}
}

func (h *FundHandler) Subscribe(c *gin.Context) {
	var req model.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	resp, err := h.engine.Subscribe(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FundHandler) Redeem(c *gin.Context) {
	var req model.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	resp, err := h.engine.Redeem(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FundHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"result": h.engine.Ping()})
}
