package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/pkg/httpcontext"
	"github.com/fastygo/teamboard/pkg/translator"
	maintenanceUC "github.com/fastygo/teamboard/usecase/maintenance"
)

type MaintenanceHandler struct {
	baseHandler
	uc *maintenanceUC.UseCase
}

func NewMaintenanceHandler(uc *maintenanceUC.UseCase, adapter *httpcontext.Adapter, tr *translator.Translator, logger *zap.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		baseHandler: newBaseHandler(adapter, tr, logger),
		uc:          uc,
	}
}

// @Summary Detach tasks that reference missing teams
// @Tags maintenance
// @Router /api/v1/maintenance/repair [post]
func (h *MaintenanceHandler) Repair(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	repaired, err := h.uc.Repair(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"repaired": repaired})
}

// @Summary Export tasks, teams and the activity log
// @Tags maintenance
// @Router /api/v1/maintenance/export [get]
func (h *MaintenanceHandler) Export(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snapshot, err := h.uc.Export(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	// The snapshot is sent bare, not enveloped, so the file can be imported as is.
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.Header.Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"teamboard-%s.json\"", snapshot.ExportDate.Format(domain.DateLayout)))
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(body)
}

// @Summary Replace tasks, teams and the activity log from a snapshot
// @Tags maintenance
// @Router /api/v1/maintenance/import [post]
func (h *MaintenanceHandler) Import(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	body := append([]byte(nil), ctx.PostBody()...)
	result, err := h.uc.Import(stdCtx, actor, body)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("snapshot imported", zap.String("by", actor.UserID))
	h.respondSuccess(ctx, http.StatusOK, result)
}
