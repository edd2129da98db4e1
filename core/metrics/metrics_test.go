package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/satbot/core/config"
)

func TestObserveHandlerCounts(t *testing.T) {
	before := testutil.ToFloat64(handlerTotal.WithLabelValues("start", "ok"))
	ObserveHandler(" Start ", "OK", 12*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(handlerTotal.WithLabelValues("start", "ok")))
}

func TestUpdateReceivedNormalizesKind(t *testing.T) {
	before := testutil.ToFloat64(updatesReceived.WithLabelValues("unknown"))
	UpdateReceived("")
	assert.Equal(t, before+1, testutil.ToFloat64(updatesReceived.WithLabelValues("unknown")))
}

func TestSenderFailuresReadsFunc(t *testing.T) {
	var n uint64 = 3
	c := SenderFailures(func() uint64 { return n })
	assert.Equal(t, float64(3), testutil.ToFloat64(c))
	n = 5
	assert.Equal(t, float64(5), testutil.ToFloat64(c))
}

func TestSenderQueueReadsFunc(t *testing.T) {
	depth := 2
	c := SenderQueue(func() int { return depth })
	assert.Equal(t, float64(2), testutil.ToFloat64(c))
}

func TestServerHandler(t *testing.T) {
	MustRegister()
	srv := NewServer(coreconfig.MetricsConfig{Listen: "127.0.0.1:0", Path: "/metrics"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	UpdateLimited()
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "bot_updates_rate_limited_total"))
}
