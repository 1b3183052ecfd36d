package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type notionRequest struct {
	method string
	path   string
	body   map[string]interface{}
	auth   string
}

type fakeNotion struct {
	mu        sync.Mutex
	requests  []notionRequest
	queryHits []string
}

func (f *fakeNotion) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.requests = append(f.requests, notionRequest{method: r.Method, path: r.URL.Path, body: body, auth: r.Header.Get("Authorization")})
		f.mu.Unlock()

		if r.Header.Get("Notion-Version") == "" {
			t.Errorf("missing Notion-Version header on %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/query") {
			results := []map[string]string{}
			for _, id := range f.queryHits {
				results = append(results, map[string]string{"id": id})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
			return
		}
		_, _ = w.Write([]byte(`{"id":"new"}`))
	}
}

func newNotionFixture(t *testing.T, hits ...string) (*fakeNotion, *NotionClient) {
	t.Helper()
	fake := &fakeNotion{queryHits: hits}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client := NewNotionClient(NotionConfig{
		APIKey:         "secret",
		DatabaseID:     "attendance-db",
		TaskDatabaseID: "task-db",
		BaseURL:        srv.URL,
	})
	return fake, client
}

func TestNotionCheckInCreatesPageWhenMissing(t *testing.T) {
	fake, client := newNotionFixture(t)

	e := NewAttendanceEvent(EventCheckIn, "u1", "2024-03-04", time.Now())
	e.CheckIn = "09:05:00"
	if err := client.OnCheckIn(context.Background(), e); err != nil {
		t.Fatalf("check-in sync: %v", err)
	}

	if len(fake.requests) != 2 {
		t.Fatalf("requests = %d, want query + create", len(fake.requests))
	}
	if fake.requests[0].path != "/v1/databases/attendance-db/query" {
		t.Fatalf("first path = %s", fake.requests[0].path)
	}
	create := fake.requests[1]
	if create.method != http.MethodPost || create.path != "/v1/pages" {
		t.Fatalf("create = %s %s", create.method, create.path)
	}
	if create.auth != "Bearer secret" {
		t.Fatalf("auth = %q, want Bearer secret", create.auth)
	}
	props := create.body["properties"].(map[string]interface{})
	for _, key := range []string{propDate, propUser, propCheckIn, propStatus} {
		if _, ok := props[key]; !ok {
			t.Fatalf("create properties missing %q: %v", key, props)
		}
	}
}

func TestNotionCheckInUpdatesExistingPage(t *testing.T) {
	fake, client := newNotionFixture(t, "page-1")

	e := NewAttendanceEvent(EventCheckIn, "u1", "2024-03-04", time.Now())
	e.CheckIn = "14:00:00"
	if err := client.OnCheckIn(context.Background(), e); err != nil {
		t.Fatalf("check-in sync: %v", err)
	}

	update := fake.requests[len(fake.requests)-1]
	if update.method != http.MethodPatch || update.path != "/v1/pages/page-1" {
		t.Fatalf("update = %s %s, want PATCH /v1/pages/page-1", update.method, update.path)
	}
}

func TestNotionCheckOutWritesWorkedHours(t *testing.T) {
	fake, client := newNotionFixture(t, "page-1")

	out := "18:00:00"
	e := NewAttendanceEvent(EventCheckOut, "u1", "2024-03-04", time.Now())
	e.CheckOut = &out
	e.TotalWorkMinutes = 475
	if err := client.OnCheckOut(context.Background(), e); err != nil {
		t.Fatalf("check-out sync: %v", err)
	}

	update := fake.requests[len(fake.requests)-1]
	props := update.body["properties"].(map[string]interface{})
	worked, _ := json.Marshal(props[propWorked])
	if !strings.Contains(string(worked), "7시간 55분") {
		t.Fatalf("worked property = %s, want 7시간 55분", worked)
	}
}

func TestNotionTasksCommentOnFirstPage(t *testing.T) {
	fake, client := newNotionFixture(t, "task-page-1", "task-page-2")

	e := NewTasksEvent("u1", "2024-03-04", []TaskItem{{Name: "API 개발", Hours: 4, Category: "Development"}}, time.Now())
	if err := client.OnTasksLogged(context.Background(), e); err != nil {
		t.Fatalf("tasks sync: %v", err)
	}

	comment := fake.requests[len(fake.requests)-1]
	if comment.path != "/v1/comments" {
		t.Fatalf("path = %s, want /v1/comments", comment.path)
	}
	parent := comment.body["parent"].(map[string]interface{})
	if parent["page_id"] != "task-page-1" {
		t.Fatalf("parent = %v, want task-page-1", parent)
	}
}

func TestNotionReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"object":"error","status":401,"code":"unauthorized","message":"unauthorized token"}`))
	}))
	defer srv.Close()

	client := NewNotionClient(NotionConfig{APIKey: "bad", DatabaseID: "db", BaseURL: srv.URL})
	err := client.OnManualEntry(context.Background(), NewAttendanceEvent(EventManualEntry, "u1", "2024-03-04", time.Now()))
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}
