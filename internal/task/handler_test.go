package task

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	tasks map[string]Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[string]Task)}
}

func (s *fakeStore) List(_ context.Context) ([]Task, error) {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) ListByCreator(_ context.Context, createdBy string) ([]Task, error) {
	var out []Task
	for _, t := range s.tasks {
		if t.CreatedBy == createdBy {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (s *fakeStore) Create(_ context.Context, t Task) error {
	for _, existing := range s.tasks {
		if existing.Name == t.Name {
			return ErrDuplicateName
		}
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *fakeStore) Update(_ context.Context, id string, t Task) error {
	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	t.ID = id
	s.tasks[id] = t
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeStore) SetAlive(_ context.Context, id string, alive bool) error {
	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.IsAlive = alive
	s.tasks[id] = t
	return nil
}

const validTaskBody = `{
	"name": "write report",
	"description": "quarterly report",
	"created_at": "2025-03-10",
	"dead_line": "2025-03-20",
	"status": "pending",
	"is_alive": true,
	"created_by": "alice123"
}`

func doJSON(handler http.HandlerFunc, method, path, body string, pathValues map[string]string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for key, value := range pathValues {
		req.SetPathValue(key, value)
	}
	handler(rec, req)
	return rec
}

func TestRegisterMissingFieldsUsesFlatErrorShape(t *testing.T) {
	handler := NewHandler(newFakeStore())

	cases := []string{
		``,
		`{}`,
		`{"name":"write report"}`,
		`{"name":"write report","description":"d","created_at":"2025-03-10","dead_line":"2025-03-20","status":"pending","is_alive":true}`,
	}

	for _, body := range cases {
		rec := doJSON(handler.Register, http.MethodPost, "/register_task", body, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"message":"Todos los campos son requeridos","status":"error"}`, rec.Body.String())
	}
}

func TestRegisterRejectsBadDates(t *testing.T) {
	handler := NewHandler(newFakeStore())

	body := strings.Replace(validTaskBody, "2025-03-20", "20-03-2025", 1)
	rec := doJSON(handler.Register, http.MethodPost, "/register_task", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid date format (YYYY-MM-DD)")
}

func TestRegisterHappyPathThenDuplicateName(t *testing.T) {
	store := newFakeStore()
	handler := NewHandler(store)

	rec := doJSON(handler.Register, http.MethodPost, "/register_task", validTaskBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task registered successfully")
	require.Len(t, store.tasks, 1)
	for id := range store.tasks {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "created tasks get uuid ids")
	}

	rec = doJSON(handler.Register, http.MethodPost, "/register_task", validTaskBody, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task name already registered")
}

func TestTaskEndpointsRejectMalformedIDs(t *testing.T) {
	handler := NewHandler(newFakeStore())

	endpoints := map[string]http.HandlerFunc{
		"get":     handler.Get,
		"edit":    handler.Edit,
		"delete":  handler.Delete,
		"enable":  handler.Enable,
		"disable": handler.Disable,
	}

	for name, endpoint := range endpoints {
		rec := doJSON(endpoint, http.MethodGet, "/tasks/123", validTaskBody, map[string]string{"id": "123"})

		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Contains(t, rec.Body.String(), "Invalid task ID format", name)
	}
}

func TestGetUnknownTask(t *testing.T) {
	handler := NewHandler(newFakeStore())

	id := uuid.NewString()
	rec := doJSON(handler.Get, http.MethodGet, "/tasks/"+id, "", map[string]string{"id": id})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task not found")
}

func TestListByCreatorEmptyIsNotFoundWithEmptyData(t *testing.T) {
	handler := NewHandler(newFakeStore())

	rec := doJSON(handler.ListByCreator, http.MethodGet, "/tasks/user/ghost", "", map[string]string{"created_by": "ghost"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		StatusCode int `json:"statusCode"`
		IntData    struct {
			Message string `json:"message"`
			Data    []Task `json:"data"`
		} `json:"intData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
	assert.Equal(t, "No tasks found for this user", body.IntData.Message)
	assert.NotNil(t, body.IntData.Data)
	assert.Empty(t, body.IntData.Data)
}

func TestEditLifecycle(t *testing.T) {
	store := newFakeStore()
	handler := NewHandler(store)

	require.Equal(t, http.StatusCreated, doJSON(handler.Register, http.MethodPost, "/register_task", validTaskBody, nil).Code)
	var id string
	for created := range store.tasks {
		id = created
	}

	rec := doJSON(handler.Edit, http.MethodPut, "/tasks/"+id, `{"name":"only a name"}`, map[string]string{"id": id})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "All fields are required")

	edited := strings.Replace(validTaskBody, "pending", "done", 1)
	rec = doJSON(handler.Edit, http.MethodPut, "/tasks/"+id, edited, map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task edited successfully")
	assert.Equal(t, "done", store.tasks[id].Status)

	missing := uuid.NewString()
	rec = doJSON(handler.Edit, http.MethodPut, "/tasks/"+missing, edited, map[string]string{"id": missing})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnableDisableAndDelete(t *testing.T) {
	store := newFakeStore()
	handler := NewHandler(store)

	require.Equal(t, http.StatusCreated, doJSON(handler.Register, http.MethodPost, "/register_task", validTaskBody, nil).Code)
	var id string
	for created := range store.tasks {
		id = created
	}

	rec := doJSON(handler.Disable, http.MethodPut, "/tasks/"+id+"/disable", "", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task disabled successfully")
	assert.False(t, store.tasks[id].IsAlive)

	rec = doJSON(handler.Enable, http.MethodPut, "/tasks/"+id+"/enable", "", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task enabled successfully")
	assert.True(t, store.tasks[id].IsAlive)

	rec = doJSON(handler.Delete, http.MethodDelete, "/tasks/"+id, "", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task deleted successfully")
	assert.Empty(t, store.tasks)

	rec = doJSON(handler.Delete, http.MethodDelete, "/tasks/"+id, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
