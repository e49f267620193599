// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 空き時間クエリの種別。メトリクスのkindラベルに使う。
const (
	KindAttendeeAvailability = "attendee_availability"
	KindLocationAvailability = "location_availability"
	KindCommonAvailability   = "common_availability"
	KindLocationSearch       = "location_search"
	KindSuggestion           = "suggestion"
)

// MetricsCollector はメトリクス収集のインターフェース。
// スケジューリングサービス・ワーカー・HTTP層から利用する。
type MetricsCollector interface {
	RecordQuery(kind string, results int)
	RecordEngineLatency(kind string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordMeetingsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	queries       *prometheus.CounterVec
	results       *prometheus.CounterVec
	emptyResults  *prometheus.CounterVec
	engineLatency *prometheus.HistogramVec
	httpStatus    *prometheus.CounterVec
	meetingsClean prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetplan_queries_total",
			Help: "空き時間クエリの合計数",
		}, []string{"kind"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetplan_query_results_total",
			Help: "空き時間クエリが返した区間・候補の合計数",
		}, []string{"kind"}),
		emptyResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetplan_empty_results_total",
			Help: "結果が0件だった空き時間クエリの数",
		}, []string{"kind"}),
		engineLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meetplan_engine_latency_seconds",
			Help:    "空き時間計算エンジンの処理時間（秒）",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"kind"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetplan_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		meetingsClean: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetplan_meetings_cleaned_total",
			Help: "保持期間を過ぎて削除された会議の合計数",
		}),
	}

	reg.MustRegister(
		c.queries,
		c.results,
		c.emptyResults,
		c.engineLatency,
		c.httpStatus,
		c.meetingsClean,
	)

	return c
}

// RecordQuery はクエリ1件とその結果件数を記録する。
func (c *Collector) RecordQuery(kind string, results int) {
	c.queries.WithLabelValues(kind).Inc()
	c.results.WithLabelValues(kind).Add(float64(results))
	if results == 0 {
		c.emptyResults.WithLabelValues(kind).Inc()
	}
}

// RecordEngineLatency はエンジンの処理時間を記録する。
func (c *Collector) RecordEngineLatency(kind string, duration time.Duration) {
	c.engineLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordMeetingsCleaned は削除された会議数を記録する。
func (c *Collector) RecordMeetingsCleaned(count int64) {
	c.meetingsClean.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordQuery(string, int)                   {}
func (Nop) RecordEngineLatency(string, time.Duration) {}
func (Nop) RecordHTTPStatus(int)                      {}
func (Nop) RecordMeetingsCleaned(int64)               {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// StatusMiddleware はレスポンスのステータスコードを記録するミドルウェアを返す。
func StatusMiddleware(c MetricsCollector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			c.RecordHTTPStatus(status)
		})
	}
}
