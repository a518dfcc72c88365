package metrics

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BaSui01/framelens/llm/dispatch"
	"github.com/BaSui01/framelens/llm/image"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// 编译期接口检查
var (
	_ dispatch.Recorder = (*Collector)(nil)
	_ image.Observer    = (*Collector)(nil)
)

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), nil)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.agentCallsTotal)
	assert.NotNil(t, collector.batchesTotal)
	assert.NotNil(t, collector.normalizeTotal)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("POST", "/api/gemini/text", 200, 100*time.Millisecond, 1024, 2048)
	collector.RecordHTTPRequest("POST", "/api/gemini/text", 201, 50*time.Millisecond, 512, 1024)
	collector.RecordHTTPRequest("POST", "/api/gemini/text", 400, 5*time.Millisecond, 10, 80)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/api/gemini/text", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/api/gemini/text", "4xx")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.httpRequestDuration))
}

func TestCollector_RecordAgentCall(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordAgentCall("gemini-1.5-flash", "success", time.Second)
	collector.RecordAgentCall("gemini-1.5-flash", "timeout", 2*time.Minute)
	collector.RecordAgentCall("gemini-1.5-flash", "success", 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.agentCallsTotal.WithLabelValues("gemini-1.5-flash", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.agentCallsTotal.WithLabelValues("gemini-1.5-flash", "timeout")))
}

func TestCollector_RecordBatch(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordBatch(5, 2, 3*time.Second)
	collector.RecordBatch(2, 0, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.batchesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.batchFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.batchAgents))
}

func TestCollector_ObserveNormalize(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.ObserveNormalize("compact", 10*time.Millisecond, nil)
	collector.ObserveNormalize("preserve", 20*time.Millisecond, errors.New("decode"))

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.normalizeTotal.WithLabelValues("compact", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.normalizeTotal.WithLabelValues("preserve", "error")))
}

func TestCollector_RecordRateLimited(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordRateLimited()
	collector.RecordRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.rateLimitedTotal))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{502, "5xx"},
		{100, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCode(tt.code))
	}
}

func TestCollector_Concurrent(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.RecordAgentCall("m", "success", time.Millisecond)
			collector.RecordBatch(1, 0, time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50.0, testutil.ToFloat64(collector.agentCallsTotal.WithLabelValues("m", "success")))
	assert.Equal(t, 50.0, testutil.ToFloat64(collector.batchesTotal))
}
