package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskloop/task-api/internal/core/domain"
	"github.com/taskloop/task-api/internal/core/ports"
)

type stubTaskService struct {
	createFn func(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error)
	listFn   func(ctx context.Context, ownerID string) ([]*domain.Task, error)
	getFn    func(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error)
	updateFn func(ctx context.Context, input ports.UpdateTaskInput) (*domain.Task, error)
	deleteFn func(ctx context.Context, ownerID string, taskID int64) error
	toggleFn func(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, input)
}

func (s *stubTaskService) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	return s.listFn(ctx, ownerID)
}

func (s *stubTaskService) Get(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
	return s.getFn(ctx, ownerID, taskID)
}

func (s *stubTaskService) Update(ctx context.Context, input ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, input)
}

func (s *stubTaskService) Delete(ctx context.Context, ownerID string, taskID int64) error {
	return s.deleteFn(ctx, ownerID, taskID)
}

func (s *stubTaskService) Toggle(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
	return s.toggleFn(ctx, ownerID, taskID)
}

// taskContext builds an authenticated echo context the way the Auth
// middleware leaves it.
func taskContext(e *echo.Echo, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestTaskHandler_Create_Success(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createFn: func(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
			if input.OwnerID != "user-1" {
				t.Fatalf("expected owner from context, got %q", input.OwnerID)
			}
			if input.IdempotencyKey != "req-1" {
				t.Fatalf("expected idempotency key, got %q", input.IdempotencyKey)
			}
			return &domain.Task{ID: 1, OwnerID: input.OwnerID, Title: input.Title}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodPost, "/api/v1/tasks", `{"title":"t"}`, "user-1")
	c.Request().Header.Set("Idempotency-Key", "req-1")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != float64(1) || resp["completed"] != false {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Create_MissingTitle(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createFn: func(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := taskContext(e, http.MethodPost, "/api/v1/tasks", `{"description":"no title"}`, "user-1")

	err := handler.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestTaskHandler_Create_NoIdentity(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createFn: func(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := taskContext(e, http.MethodPost, "/api/v1/tasks", `{"title":"t"}`, "")

	err := handler.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestTaskHandler_Get_NotFoundPassthrough(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		getFn: func(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := taskContext(e, http.MethodGet, "/api/v1/tasks/7", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := handler.Get(c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Get_NonNumericID(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		getFn: func(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := taskContext(e, http.MethodGet, "/api/v1/tasks/abc", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := handler.Get(c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Update_PartialBody(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		updateFn: func(ctx context.Context, input ports.UpdateTaskInput) (*domain.Task, error) {
			if input.Title != nil {
				t.Fatalf("title should be absent, got %q", *input.Title)
			}
			if input.Completed == nil || !*input.Completed {
				t.Fatalf("expected completed=true")
			}
			return &domain.Task{ID: input.TaskID, OwnerID: input.OwnerID, Title: "kept", Completed: true}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodPut, "/api/v1/tasks/3", `{"completed":true}`, "user-1")
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTaskHandler_Delete_NoContent(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		deleteFn: func(ctx context.Context, ownerID string, taskID int64) error {
			if ownerID != "user-1" || taskID != 5 {
				t.Fatalf("unexpected args: %s %d", ownerID, taskID)
			}
			return nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodDelete, "/api/v1/tasks/5", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestTaskHandler_Toggle(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		toggleFn: func(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
			return &domain.Task{ID: taskID, OwnerID: ownerID, Title: "t", Completed: true}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodPatch, "/api/v1/tasks/2/toggle", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("2")

	if err := handler.Toggle(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["completed"] != true {
		t.Fatalf("expected completed=true, got %v", resp["completed"])
	}
}

func TestTaskHandler_List(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		listFn: func(ctx context.Context, ownerID string) ([]*domain.Task, error) {
			return []*domain.Task{
				{ID: 1, OwnerID: ownerID, Title: "first"},
				{ID: 2, OwnerID: ownerID, Title: "second", Completed: true},
			}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := taskContext(e, http.MethodGet, "/api/v1/tasks", "", "user-1")

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[0]["title"] != "first" || resp[1]["completed"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
