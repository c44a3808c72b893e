package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"

	"tasktree/internal/service"
)

type request struct {
	Method string
	Path   string
	Query  string
}

// fakeAPI serves canned Google Tasks responses keyed by "METHOD path".
type fakeAPI struct {
	mu        sync.Mutex
	requests  []request
	responses map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
	f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	if token := r.URL.Query().Get("pageToken"); token != "" {
		key += "?" + token
	}
	body, ok := f.responses[key]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":404,"message":"Not Found"}}`)
		return
	}
	if body == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func newTestClient(t *testing.T, responses map[string]string) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{responses: responses}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("NewWithHTTPClient() error = %v", err)
	}
	return c, api
}

func TestListTasksFollowsPages(t *testing.T) {
	c, api := newTestClient(t, map[string]string{
		"GET /tasks/v1/lists/L/tasks":    `{"items":[{"id":"a","title":"Alpha","position":"001","status":"needsAction"}],"nextPageToken":"p2"}`,
		"GET /tasks/v1/lists/L/tasks?p2": `{"items":[{"id":"a1","title":"Alpha one","parent":"a","position":"000","status":"needsAction"}]}`,
	})

	got, err := c.ListTasks(context.Background(), "L")
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tasks, want 2", len(got))
	}
	if got[1].ID != "a1" || got[1].Parent != "a" || got[1].Position != "000" {
		t.Errorf("second task = %+v", got[1])
	}
	if len(api.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(api.requests))
	}
	if q := api.requests[0].Query; !strings.Contains(q, "showCompleted=false") {
		t.Errorf("query = %q, want showCompleted=false", q)
	}
}

func TestInsertTaskSendsPlacement(t *testing.T) {
	c, api := newTestClient(t, map[string]string{
		"POST /tasks/v1/lists/L/tasks": `{"id":"srv-9","title":"New","parent":"a","status":"needsAction"}`,
	})

	created, err := c.InsertTask(context.Background(), "L", service.Task{ID: "tmp", Title: "New", Parent: "a", Previous: "a1"})
	if err != nil {
		t.Fatalf("InsertTask() error = %v", err)
	}
	if created.ID != "srv-9" {
		t.Errorf("ID = %q, want srv-9", created.ID)
	}
	q := api.requests[0].Query
	if !strings.Contains(q, "parent=a") || !strings.Contains(q, "previous=a1") {
		t.Errorf("query = %q, want parent and previous", q)
	}
}

func TestMoveTaskTopLevelFirst(t *testing.T) {
	c, api := newTestClient(t, map[string]string{
		"POST /tasks/v1/lists/L/tasks/b/move": `{"id":"b"}`,
	})

	if err := c.MoveTask(context.Background(), "L", "b", "", ""); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	q := api.requests[0].Query
	if strings.Contains(q, "parent=") || strings.Contains(q, "previous=") {
		t.Errorf("query = %q, want no placement parameters", q)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	c, api := newTestClient(t, map[string]string{
		"PATCH /tasks/v1/lists/L/tasks/a":  `{"id":"a","title":"Renamed"}`,
		"DELETE /tasks/v1/lists/L/tasks/a": "",
	})

	ctx := context.Background()
	if err := c.UpdateTask(ctx, "L", service.Task{ID: "a", Title: "Renamed"}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if err := c.DeleteTask(ctx, "L", "a"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if len(api.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(api.requests))
	}
}

func TestNotFoundIsTyped(t *testing.T) {
	c, _ := newTestClient(t, nil)

	err := c.DeleteTask(context.Background(), "L", "missing")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("DeleteTask() error = %v, want ErrNotFound", err)
	}
}

func TestResolveList(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"GET /tasks/v1/users/@me/lists/@default": `{"id":"real-default","title":"My Tasks"}`,
		"GET /tasks/v1/users/@me/lists":          `{"items":[{"id":"real-default","title":"My Tasks"},{"id":"w","title":"Work"},{"id":"w2","title":" work "}]}`,
	})

	ctx := context.Background()
	got, err := c.ResolveList(ctx, "my tasks")
	if err != nil {
		t.Fatalf("ResolveList() error = %v", err)
	}
	if got.ID != DefaultListID || !got.IsDefault {
		t.Errorf("ResolveList() = %+v, want default list", got)
	}

	if _, err := c.ResolveList(ctx, "Work"); !errors.Is(err, service.ErrAmbiguous) {
		t.Errorf("ResolveList(Work) error = %v, want ErrAmbiguous", err)
	}
	if _, err := c.ResolveList(ctx, "Home"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("ResolveList(Home) error = %v, want ErrNotFound", err)
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Get x: context deadline exceeded", "request timed out"},
		{"googleapi: Error 401: Invalid Credentials", "token expired or revoked (run: tasktree login)"},
		{"googleapi: Error 404: Not Found", "task or list not found"},
		{"boom", "boom"},
	}
	for _, tt := range tests {
		if got := wrapError(errors.New(tt.in)).Error(); got != tt.want {
			t.Errorf("wrapError(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if wrapError(nil) != nil {
		t.Error("wrapError(nil) != nil")
	}
}
