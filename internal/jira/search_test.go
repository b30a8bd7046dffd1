package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lotas/ticketdeck/internal/governor"
)

// fakeTracker serves /rest/api/2/search with total issues keyed PRJ-1..PRJ-total.
type fakeTracker struct {
	total     int
	failStart int // startAt that answers 500; -1 for none

	mu       sync.Mutex
	starts   []int
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (f *fakeTracker) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/search" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing auth header: %q", r.Header.Get("Authorization"))
		}
		n := f.inFlight.Add(1)
		defer f.inFlight.Add(-1)
		for {
			old := f.peak.Load()
			if n <= old || f.peak.CompareAndSwap(old, n) {
				break
			}
		}

		q := r.URL.Query()
		startAt, _ := strconv.Atoi(q.Get("startAt"))
		maxResults, _ := strconv.Atoi(q.Get("maxResults"))
		if maxResults > 1 {
			f.mu.Lock()
			f.starts = append(f.starts, startAt)
			f.mu.Unlock()
			if startAt == f.failStart {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

		var issues []map[string]any
		for i := startAt; i < startAt+maxResults && i < f.total; i++ {
			issues = append(issues, map[string]any{
				"key":    fmt.Sprintf("PRJ-%d", i+1),
				"fields": map[string]any{"summary": fmt.Sprintf("issue %d", i+1)},
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"startAt": startAt, "maxResults": maxResults, "total": f.total, "issues": issues,
		})
	})
}

func testClient(url string, gov *governor.Governor) *Client {
	return NewClient(&RequestContext{
		Server:  url,
		Headers: http.Header{"Authorization": []string{"Bearer tok"}},
	}, gov)
}

func TestPageOffsets(t *testing.T) {
	cases := []struct {
		total int
		want  []int
	}{
		{0, nil},
		{1, []int{0}},
		{100, []int{0}},
		{101, []int{0, 100}},
		{250, []int{0, 100, 200}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, PageOffsets(tc.total, 100)); diff != "" {
			t.Errorf("PageOffsets(%d) mismatch (-want +got):\n%s", tc.total, diff)
		}
	}
}

func TestSearch_AllPages(t *testing.T) {
	ft := &fakeTracker{total: 250, failStart: -1}
	srv := httptest.NewServer(ft.handler(t))
	defer srv.Close()

	got, err := testClient(srv.URL, governor.New(4)).Search(context.Background(), "project = PRJ", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 250 {
		t.Fatalf("got %d issues, want 250", len(got))
	}
	sort.Ints(ft.starts)
	if diff := cmp.Diff([]int{0, 100, 200}, ft.starts); diff != "" {
		t.Errorf("page offsets mismatch (-want +got):\n%s", diff)
	}
	if ft.peak.Load() > 2 {
		t.Errorf("peak concurrency %d exceeds worker count 2", ft.peak.Load())
	}
}

func TestSearch_PartialPageFailure(t *testing.T) {
	ft := &fakeTracker{total: 250, failStart: 100}
	srv := httptest.NewServer(ft.handler(t))
	defer srv.Close()

	got, err := testClient(srv.URL, governor.New(4)).Search(context.Background(), "project = PRJ", 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Pages 0 and 200 contribute 100 + 50; page 100 failed.
	if len(got) != 150 {
		t.Fatalf("got %d issues, want 150", len(got))
	}
	if len(ft.starts) != 3 {
		t.Errorf("expected 3 page requests, got %v", ft.starts)
	}
	seen := map[string]bool{}
	for _, tk := range got {
		if seen[tk.Key] {
			t.Errorf("duplicate key %s", tk.Key)
		}
		seen[tk.Key] = true
	}
	if seen["PRJ-150"] {
		t.Error("issue from failed page should be absent")
	}
}

func TestSearch_WorkersClampedToGovernor(t *testing.T) {
	ft := &fakeTracker{total: 1000, failStart: -1}
	srv := httptest.NewServer(ft.handler(t))
	defer srv.Close()

	got, err := testClient(srv.URL, governor.New(2)).Search(context.Background(), "x", 32)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1000 {
		t.Fatalf("got %d issues, want 1000", len(got))
	}
	if ft.peak.Load() > 2 {
		t.Errorf("peak concurrency %d exceeds governor capacity 2", ft.peak.Load())
	}
}

func TestSearch_ZeroTotal(t *testing.T) {
	ft := &fakeTracker{total: 0, failStart: -1}
	srv := httptest.NewServer(ft.handler(t))
	defer srv.Close()

	got, err := testClient(srv.URL, governor.New(2)).Search(context.Background(), "x", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 || len(ft.starts) != 0 {
		t.Errorf("expected no pages, got %d issues, starts %v", len(got), ft.starts)
	}
}

func TestSearch_ProbeStatusErrors(t *testing.T) {
	codes := []int{400, 401, 403, 404, 500, 502}
	msgs := map[string]bool{}
	for _, code := range codes {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
				w.Write([]byte("nope"))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL, governor.New(1)).Search(context.Background(), "x", 1)
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StatusError, got %v", err)
			}
			if se.Code != code {
				t.Errorf("Code = %d, want %d", se.Code, code)
			}
			msgs[se.Error()] = true
		})
	}
	if len(msgs) != len(codes) {
		t.Errorf("expected %d distinct messages, got %d", len(codes), len(msgs))
	}
}

func TestSearch_Offline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(url, governor.New(1)).Search(context.Background(), "x", 1)
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("expected ErrOffline, got %v", err)
	}
	if UserMessage(err) == "" {
		t.Error("expected a user message")
	}
}

func TestSearch_CancelledContext(t *testing.T) {
	ft := &fakeTracker{total: 500, failStart: -1}
	srv := httptest.NewServer(ft.handler(t))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testClient(srv.URL, governor.New(2)).Search(ctx, "x", 1); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// pageHandler serves a 250-issue search and hands the page at startAt to
// hook instead of answering it.
func pageHandler(t *testing.T, startAt int, hook func(w http.ResponseWriter, r *http.Request)) http.Handler {
	ft := &fakeTracker{total: 250, failStart: -1}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("maxResults") != "1" && q.Get("startAt") == strconv.Itoa(startAt) {
			hook(w, r)
			return
		}
		ft.handler(t).ServeHTTP(w, r)
	})
}

func TestSearch_TransportFailureOnPageFailsSearch(t *testing.T) {
	srv := httptest.NewServer(pageHandler(t, 100, func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, governor.New(4)).Search(context.Background(), "x", 4)
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("expected ErrOffline, got err=%v with %d issues", err, len(got))
	}
	if got != nil {
		t.Errorf("expected no issues, got %d", len(got))
	}
}

func TestSearch_CancelDuringLastBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(pageHandler(t, 200, func(w http.ResponseWriter, r *http.Request) {
		cancel()
		<-r.Context().Done()
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, governor.New(4)).Search(ctx, "x", 4)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got err=%v with %d issues", err, len(got))
	}
	if got != nil {
		t.Errorf("expected no issues, got %d", len(got))
	}
}

func TestIssue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/PRJ-7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"key": "PRJ-7", "fields": map[string]any{"summary": "seven"},
		})
	}))
	defer srv.Close()

	tk, err := testClient(srv.URL, governor.New(1)).Issue(context.Background(), "PRJ-7")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tk.Key != "PRJ-7" || tk.Summary() != "seven" {
		t.Errorf("unexpected ticket: %+v", tk)
	}
}
