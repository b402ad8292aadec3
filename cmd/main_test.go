package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/casewatch/internal/app"
	"github.com/okian/casewatch/internal/config"
	"github.com/okian/casewatch/pkg/logger"
)

const countriesJSON = `[
  {"country":"USA","cases":100,"deaths":10,"recovered":80},
  {"country":"India","cases":90,"deaths":9,"recovered":70},
  {"country":"France","cases":80,"deaths":8,"recovered":60},
  {"country":"Vietnam","cases":70,"deaths":7,"recovered":50},
  {"country":"Broken","cases":"n/a","deaths":1,"recovered":1}
]`

func countriesServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(countriesJSON))
	}))
}

func testConfig(sourceURL string) *config.Config {
	cfg := config.New()
	cfg.SourceURL = sourceURL
	cfg.TopN = 2
	cfg.ImmediateRefresh = false
	return cfg
}

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func TestRunOnce(t *testing.T) {
	convey.Convey("Given a countries endpoint", t, func() {
		srv := countriesServer()
		defer srv.Close()

		cfg := testConfig(srv.URL)
		svc, err := newService(cfg, newSource(cfg))
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("When running a single cycle without a term", func() {
			var buf bytes.Buffer
			convey.So(runOnce(context.Background(), svc, "", &buf), convey.ShouldBeNil)

			var out onceOutput
			convey.So(json.Unmarshal(buf.Bytes(), &out), convey.ShouldBeNil)

			convey.Convey("Then Vietnam is pinned ahead of the top-2", func() {
				convey.So(len(out.Entries), convey.ShouldEqual, 3)
				convey.So(out.Entries[0].Name, convey.ShouldEqual, "Vietnam")
				convey.So(out.Entries[0].Rank, convey.ShouldEqual, 1)
				convey.So(out.Entries[1].Name, convey.ShouldEqual, "USA")
				convey.So(out.Entries[2].Name, convey.ShouldEqual, "India")
			})

			convey.Convey("And the totals cover the published entries", func() {
				convey.So(out.Totals, convey.ShouldResemble, map[string]int64{
					"cases": 260, "deaths": 26, "recovered": 200,
				})
				convey.So(out.Version, convey.ShouldEqual, uint64(1))
			})
		})

		convey.Convey("When running with a search term", func() {
			var buf bytes.Buffer
			convey.So(runOnce(context.Background(), svc, "IND", &buf), convey.ShouldBeNil)

			var out onceOutput
			convey.So(json.Unmarshal(buf.Bytes(), &out), convey.ShouldBeNil)

			convey.Convey("Then only matches are listed with their snapshot rank", func() {
				convey.So(len(out.Entries), convey.ShouldEqual, 1)
				convey.So(out.Entries[0].Name, convey.ShouldEqual, "India")
				convey.So(out.Entries[0].Rank, convey.ShouldEqual, 3)
				convey.So(out.Totals["cases"], convey.ShouldEqual, int64(260))
			})
		})
	})

	convey.Convey("Given an unreachable endpoint", t, func() {
		srv := countriesServer()
		srv.Close()

		cfg := testConfig(srv.URL)
		svc, err := newService(cfg, newSource(cfg))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the cycle fails and nothing is printed", func() {
			var buf bytes.Buffer
			convey.So(runOnce(context.Background(), svc, "", &buf), convey.ShouldNotBeNil)
			convey.So(buf.Len(), convey.ShouldEqual, 0)
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given an invalid top_n", t, func() {
		cfg := testConfig("http://localhost")
		cfg.TopN = 0

		_, err := newService(cfg, newSource(cfg))
		convey.So(errors.Is(err, app.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the assembled mux", t, func() {
		srv := countriesServer()
		defer srv.Close()

		cfg := testConfig(srv.URL)
		svc, err := newService(cfg, newSource(cfg))
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(context.Background(), cfg, svc)

		for _, path := range []string{"/healthz", "/openapi.yaml", "/api-docs", "/stats", "/search"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}

		convey.Convey("And system metrics are exposed after an update", func() {
			updateSystemMetrics()
			req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "casewatch_engine_system_goroutine_count")
		})
	})
}

func TestRunServe(t *testing.T) {
	convey.Convey("Given a serve configuration on a free port", t, func() {
		srv := countriesServer()
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.Addr = "127.0.0.1:0"
		cfg.ImmediateRefresh = true

		convey.Convey("Then it returns cleanly once the context is canceled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			convey.So(runServe(ctx, cfg), convey.ShouldBeNil)
		})
	})
}

func TestRootCommand(t *testing.T) {
	srv := countriesServer()
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "casewatch.yaml")
	if err := os.WriteFile(path, []byte("top_n: 1\npinned_key: \"\"\nlog_level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CASEWATCH_SOURCE_URL", srv.URL)
	t.Setenv(config.ConfigFileEnv, "")

	convey.Convey("Given the root command", t, func() {
		root := newRootCmd()

		convey.Convey("It exposes serve and once", func() {
			names := []string{}
			for _, c := range root.Commands() {
				names = append(names, c.Name())
			}
			convey.So(names, convey.ShouldContain, "serve")
			convey.So(names, convey.ShouldContain, "once")
		})

		convey.Convey("once prints the view for the configured source", func() {
			var stdout, stderr bytes.Buffer
			root.SetOut(&stdout)
			root.SetErr(&stderr)
			root.SetArgs([]string{"once", "--config", path})

			convey.So(root.Execute(), convey.ShouldBeNil)

			var out onceOutput
			convey.So(json.Unmarshal(stdout.Bytes(), &out), convey.ShouldBeNil)
			convey.So(len(out.Entries), convey.ShouldEqual, 1)
			convey.So(out.Entries[0].Name, convey.ShouldEqual, "USA")
		})
	})
}
