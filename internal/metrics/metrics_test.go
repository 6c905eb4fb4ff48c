package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
)

func TestLookupCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.LookupStarted(models.LookupCommentary)
	if got := testutil.ToFloat64(m.inflight.WithLabelValues("commentary")); got != 1 {
		t.Errorf("Expected 1 in-flight lookup, got %v", got)
	}

	m.LookupFinished(models.LookupCommentary, models.OutcomeFailure, time.Second)
	if got := testutil.ToFloat64(m.inflight.WithLabelValues("commentary")); got != 0 {
		t.Errorf("Expected 0 in-flight lookups, got %v", got)
	}
	if got := testutil.ToFloat64(m.lookups.WithLabelValues("commentary", "failure")); got != 1 {
		t.Errorf("Expected 1 failed lookup, got %v", got)
	}
}

func TestStoreWriteResults(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.StoreWrite(nil)
	m.StoreWrite(nil)
	m.StoreWrite(errors.New("disk full"))

	if got := testutil.ToFloat64(m.storeWrites.WithLabelValues("ok")); got != 2 {
		t.Errorf("Expected 2 successful writes, got %v", got)
	}
	if got := testutil.ToFloat64(m.storeWrites.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed write, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.LookupStarted(models.LookupDetails)
	m.LookupFinished(models.LookupDetails, models.OutcomeSuccess, time.Millisecond)
	m.StoreWrite(nil)
	m.Backup(nil)
}

func TestHandlerExposesQueueAndLibrary(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	q := queue.New(context.Background(), queue.ProcessorFunc(func(context.Context, models.WorkItem) {}), time.Hour, logger)
	defer q.Stop()
	q.EnqueueInitial([]models.WorkItem{{ID: "a"}, {ID: "b"}})

	lib := library.New()
	lib.Load([]models.Record{{ID: "a", Title: "Alpha", YearViewed: "2020"}})

	m.WatchQueue(reg, q)
	m.WatchLibrary(reg, lib)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{"cinetrack_queue_length 2", "cinetrack_queue_total 2", "cinetrack_records 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in exposition", want)
		}
	}
}
