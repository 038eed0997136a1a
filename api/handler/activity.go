package handler

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/pkg/httpcontext"
	"github.com/fastygo/teamboard/pkg/translator"
	activityUC "github.com/fastygo/teamboard/usecase/activity"
)

type ActivityHandler struct {
	baseHandler
	uc *activityUC.UseCase
}

func NewActivityHandler(uc *activityUC.UseCase, adapter *httpcontext.Adapter, tr *translator.Translator, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, tr, logger),
		uc:          uc,
	}
}

// @Summary List the activity log, newest first
// @Tags activity
// @Router /api/v1/activity [get]
func (h *ActivityHandler) List(ctx *fasthttp.RequestCtx) {
	h.list(ctx, false)
}

// @Summary List the caller's own activity
// @Tags activity
// @Router /api/v1/activity/mine [get]
func (h *ActivityHandler) Mine(ctx *fasthttp.RequestCtx) {
	h.list(ctx, true)
}

func (h *ActivityHandler) list(ctx *fasthttp.RequestCtx, mine bool) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.List(stdCtx, actor, mine, parseInt(queryString(ctx, "page"), 1))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	respondPage(h.baseHandler, ctx, page)
}

// @Summary Clear the activity log
// @Tags activity
// @Router /api/v1/activity [delete]
func (h *ActivityHandler) Clear(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Clear(stdCtx, actor); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondNoContent(ctx)
}
