package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/pkg/httpcontext"
	"github.com/fastygo/teamboard/pkg/translator"
	"github.com/fastygo/teamboard/repository/memory"
	"github.com/fastygo/teamboard/usecase"
	activityUC "github.com/fastygo/teamboard/usecase/activity"
	taskUC "github.com/fastygo/teamboard/usecase/task"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Meta   map[string]int  `json:"meta"`
}

func newRequest(method, uri string, body string, actor *domain.Actor) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	if actor != nil {
		ctx.Request.Header.Set(HeaderUserID, actor.UserID)
		ctx.Request.Header.Set(HeaderUserRole, string(actor.Role))
	}
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	return out
}

type handlers struct {
	task     *TaskHandler
	activity *ActivityHandler
}

func newHandlers(t *testing.T) handlers {
	t.Helper()
	tr, err := translator.New(nil)
	require.NoError(t, err)

	store := memory.NewStoreFrom(&memory.State{
		Users: []domain.User{
			{ID: "admin", Username: "root", Role: domain.RoleAdmin},
			{ID: "u-alice", Username: "alice", Role: domain.RoleUser},
		},
	})
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	journal := usecase.NewJournal(store, nil, nil, usecase.WithClock(func() time.Time { return now }))
	adapter := httpcontext.NewAdapter(time.Second)

	return handlers{
		task:     NewTaskHandler(taskUC.New(journal, 10, nil), adapter, tr, nil),
		activity: NewActivityHandler(activityUC.New(journal, 10, nil), adapter, tr, nil),
	}
}

var (
	adminActor = domain.Actor{UserID: "admin", Role: domain.RoleAdmin}
	aliceActor = domain.Actor{UserID: "u-alice", Role: domain.RoleUser}
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.Invalidf("bad"), http.StatusBadRequest, "INVALID"},
		{domain.ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{domain.Corrupted("tasks", errors.New("eof")), http.StatusInternalServerError, "CORRUPTED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRespondError_Localized(t *testing.T) {
	h := newHandlers(t)

	ctx := newRequest(fasthttp.MethodDelete, "/api/v1/activity", "", &aliceActor)
	ctx.Request.Header.Set("Accept-Language", "fr")
	h.activity.Clear(ctx)

	assert.Equal(t, http.StatusForbidden, ctx.Response.StatusCode())
	body := decodeEnvelope(t, ctx)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "FORBIDDEN", body.Code)
	assert.Equal(t, "Vous n'avez pas la permission de faire cela.", body.Error)
}

func TestHandlers_RequireIdentity(t *testing.T) {
	h := newHandlers(t)

	ctx := newRequest(fasthttp.MethodGet, "/api/v1/tasks", "", nil)
	h.task.List(ctx)

	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, ctx).Code)
}

func TestTaskHandler_CreateAndList(t *testing.T) {
	h := newHandlers(t)

	ctx := newRequest(fasthttp.MethodPost, "/api/v1/tasks",
		`{"title":"Write docs","priority":"High","task_type":"individual","assigned_to":"u-alice","due_date":"2024-06-20"}`, &adminActor)
	h.task.Create(ctx)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-ID"))

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, ctx).Data, &created))
	assert.Equal(t, "Write docs", created["title"])
	assert.Equal(t, "individual", created["task_type"])

	list := newRequest(fasthttp.MethodGet, "/api/v1/tasks?page=1", "", &aliceActor)
	h.task.List(list)
	require.Equal(t, http.StatusOK, list.Response.StatusCode())
	body := decodeEnvelope(t, list)
	assert.Equal(t, 1, body.Meta["total"])
	assert.Equal(t, 1, body.Meta["total_pages"])
}

func TestTaskHandler_BadPayload(t *testing.T) {
	h := newHandlers(t)

	ctx := newRequest(fasthttp.MethodPost, "/api/v1/tasks", `{"title":`, &adminActor)
	h.task.Create(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = newRequest(fasthttp.MethodPost, "/api/v1/tasks", `{"title":"x","task_type":"custom","assigned_to":["u-alice"]}`, &adminActor)
	h.task.Create(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, "INVALID", decodeEnvelope(t, ctx).Code)
}

func TestActivityHandler_ListAndClear(t *testing.T) {
	h := newHandlers(t)

	clearReq := newRequest(fasthttp.MethodDelete, "/api/v1/activity", "", &adminActor)
	h.activity.Clear(clearReq)
	assert.Equal(t, http.StatusNoContent, clearReq.Response.StatusCode())

	list := newRequest(fasthttp.MethodGet, "/api/v1/activity", "", &adminActor)
	h.activity.List(list)
	require.Equal(t, http.StatusOK, list.Response.StatusCode())

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, list).Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "root", items[0]["user_name"])
}
