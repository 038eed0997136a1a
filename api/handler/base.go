package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/api/transport"
	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/pkg/httpcontext"
	appLogger "github.com/fastygo/teamboard/pkg/logger"
	"github.com/fastygo/teamboard/pkg/translator"
	"github.com/fastygo/teamboard/usecase/view"
)

// Headers set by the auth middleware for downstream handlers.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderSessionID = "X-Session-ID"
)

type baseHandler struct {
	adapter    *httpcontext.Adapter
	translator *translator.Translator
	logger     *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, tr *translator.Translator, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, translator: tr, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// actor returns the caller identity set by the auth middleware, answering 401 when absent.
func (h baseHandler) actor(ctx *fasthttp.RequestCtx) (domain.Actor, bool) {
	userID := string(ctx.Request.Header.Peek(HeaderUserID))
	if userID == "" {
		h.respondError(ctx, domain.ErrUnauthorized)
		return domain.Actor{}, false
	}
	role, err := domain.ParseRole(string(ctx.Request.Header.Peek(HeaderUserRole)))
	if err != nil {
		role = domain.RoleUser
	}
	return domain.Actor{UserID: userID, Role: role}, true
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return false
	}
	return true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

// respondPage writes one page of a listing with its pagination metadata.
func respondPage[T any](h baseHandler, ctx *fasthttp.RequestCtx, page view.Page[T]) {
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(page.Items, transport.PageMeta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}))
}

func (h baseHandler) respondNoContent(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusNoContent)
}

// respondError maps err to a status and a localized message. Errors that
// are not domain errors are logged and hidden behind a generic message.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	lang := httpcontext.Language(ctx)

	var dErr *domain.Error
	message := h.translator.Localize(lang, "internal", "internal error")
	if errors.As(err, &dErr) {
		message = h.translator.Localize(lang, dErr.Key, dErr.Message)
	}

	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Error("request failed",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.String("code", code),
			zap.Error(err),
		)
	case code == string(domain.ErrCodeTooManyRequests):
		h.logger.Warn("request throttled", zap.ByteString("path", ctx.Path()))
	}

	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

// log returns the handler logger enriched with the request id.
func (h baseHandler) log(stdCtx context.Context) *zap.Logger {
	return appLogger.WithRequestID(stdCtx, h.logger)
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.IsDomainError(err, domain.ErrCodeTooManyRequests):
		return http.StatusTooManyRequests, string(domain.ErrCodeTooManyRequests)
	case domain.IsDomainError(err, domain.ErrCodeCorrupted):
		return http.StatusInternalServerError, string(domain.ErrCodeCorrupted)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func queryString(ctx *fasthttp.RequestCtx, name string) string {
	return string(ctx.QueryArgs().Peek(name))
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
