package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkrot/internal/app"
	"github.com/JakeFAU/linkrot/internal/config"
	"github.com/JakeFAU/linkrot/internal/linkrot"
	"github.com/JakeFAU/linkrot/internal/remediate"
)

// fakeStore is a minimal in-memory posts/* API keyed by href.
type fakeStore struct {
	mu    sync.Mutex
	token string
	posts []map[string]string
	calls []string
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := r.URL.Query()
	f.calls = append(f.calls, r.URL.Path)
	if q.Get("auth_token") != f.token || q.Get("format") != "json" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.URL.Path {
	case "/v1/posts/update":
		_ = json.NewEncoder(w).Encode(map[string]string{"update_time": "2024-05-01T00:00:00Z"})
	case "/v1/posts/all":
		_ = json.NewEncoder(w).Encode(f.posts)
	case "/v1/posts/add":
		f.posts = append(f.posts, map[string]string{
			"href": q.Get("url"), "description": q.Get("description"), "extended": q.Get("extended"),
			"time": q.Get("dt"), "shared": q.Get("shared"), "toread": q.Get("toread"), "tags": q.Get("tags"),
		})
		_ = json.NewEncoder(w).Encode(map[string]string{"result_code": "done"})
	case "/v1/posts/delete":
		kept := f.posts[:0]
		for _, p := range f.posts {
			if p["href"] != q.Get("url") {
				kept = append(kept, p)
			}
		}
		f.posts = kept
		_ = json.NewEncoder(w).Encode(map[string]string{"result_code": "done"})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeStore) hrefs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, p["href"])
	}
	return out
}

func testConfig(storeURL, archiveURL string) config.Config {
	return config.Config{
		Store: config.StoreConfig{
			BaseURL:        storeURL + "/v1",
			Token:          "alice:SECRET",
			UserAgent:      "linkrot-test",
			TimeoutSeconds: 5,
		},
		Archive: config.ArchiveConfig{
			Endpoint:       archiveURL + "/wayback/available",
			TimeoutSeconds: 5,
		},
		Progress: config.ProgressConfig{Terminal: true},
	}
}

func TestRunEndToEnd(t *testing.T) {
	sites := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/alive":
			_, _ = w.Write([]byte("ok"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer sites.Close()

	archived := sites.URL + "/archived"
	snapshot := "http://web.archive.org/web/20200101000000/" + archived
	archive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") == archived {
			_, _ = w.Write([]byte(`{"archived_snapshots":{"closest":{"available":true,"url":"` + snapshot + `","timestamp":"20200101000000"}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"archived_snapshots":{}}`))
	}))
	defer archive.Close()

	store := &fakeStore{token: "alice:SECRET", posts: []map[string]string{
		{"href": sites.URL + "/alive", "description": "alive", "time": "2020-01-01T00:00:00Z", "shared": "no", "toread": "no"},
		{"href": archived, "description": "X", "time": "2020-01-01T00:00:00Z", "shared": "yes", "toread": "no", "tags": "go web"},
		{"href": sites.URL + "/vanished", "description": "gone", "time": "2020-01-01T00:00:00Z", "shared": "no", "toread": "no"},
	}}
	storeSrv := httptest.NewServer(store)
	defer storeSrv.Close()

	var prompts []remediate.Prompt
	var stdout, stderr bytes.Buffer
	reg := prometheus.NewRegistry()
	a, err := app.New(context.Background(), testConfig(storeSrv.URL, archive.URL), app.Options{
		Stdout:   &stdout,
		Stderr:   &stderr,
		Logger:   zap.NewNop(),
		Registry: reg,
		Confirmer: remediate.ConfirmFunc(func(_ context.Context, p remediate.Prompt) bool {
			prompts = append(prompts, p)
			return true
		}),
	})
	require.NoError(t, err)

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, a.Close(context.Background()))

	require.Equal(t, 3, summary.Total)
	require.Len(t, summary.Dead, 2)
	require.Contains(t, stdout.String(), "link rot: 66.67%. 2/3\n")
	require.Contains(t, stdout.String(), "Bookmark updated\n")
	require.Contains(t, stdout.String(), "Bookmark deleted\n")
	require.Contains(t, stderr.String(), "checked 3/3\n")

	require.Len(t, prompts, 2)
	require.Equal(t, remediate.ActionUpdate, prompts[0].Action)
	require.Equal(t, snapshot, prompts[0].SnapshotURL)
	require.Equal(t, remediate.ActionDelete, prompts[1].Action)

	require.ElementsMatch(t, []string{sites.URL + "/alive", snapshot}, store.hrefs())
	count, err := testutil.GatherAndCount(reg, "linkrot_runs_started_total", "linkrot_links_checked_total")
	require.NoError(t, err)
	require.Equal(t, 3, count, "one run counter plus live and dead link series")
}

func TestNewFailsOnRejectedToken(t *testing.T) {
	store := &fakeStore{token: "alice:OTHER"}
	storeSrv := httptest.NewServer(store)
	defer storeSrv.Close()

	_, err := app.New(context.Background(), testConfig(storeSrv.URL, "http://127.0.0.1:1"), app.Options{
		Logger:    zap.NewNop(),
		Stdout:    &bytes.Buffer{},
		Stderr:    &bytes.Buffer{},
		Confirmer: remediate.ConfirmFunc(func(context.Context, remediate.Prompt) bool { return false }),
	})
	require.ErrorIs(t, err, linkrot.ErrAuthenticationFailed)
	require.Equal(t, []string{"/v1/posts/update"}, store.calls)
	require.NotContains(t, err.Error(), "SECRET")
}
