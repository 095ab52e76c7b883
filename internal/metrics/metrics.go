// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 名簿ビューのラベル値。
const (
	ViewByClass         = "by_class"
	ViewByClassLanguage = "by_class_language"
	ViewSessionsInRange = "sessions_in_range"
	ViewNameSearch      = "name_search"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordEnrollment()
	RecordTransfer()
	RecordConflict(code string)
	RecordRosterQuery(view string, duration time.Duration)
	RecordRepairedStudents(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	enrollments      prometheus.Counter
	transfers        prometheus.Counter
	conflicts        *prometheus.CounterVec
	rosterQuery      *prometheus.HistogramVec
	repairedStudents prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turmas_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		enrollments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turmas_enrollments_total",
			Help: "クラスへの受講生登録の合計数",
		}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turmas_transfers_total",
			Help: "受講生のクラス移動の合計数",
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turmas_conflicts_total",
			Help: "エラーコード別の競合（409）発生数",
		}, []string{"code"}),
		rosterQuery: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "turmas_roster_query_seconds",
			Help:    "名簿集計クエリのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"view"}),
		repairedStudents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turmas_repaired_students_total",
			Help: "整合性修復ジョブで修正された受講生の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.enrollments,
		c.transfers,
		c.conflicts,
		c.rosterQuery,
		c.repairedStudents,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordEnrollment は受講生登録を記録する。
func (c *Collector) RecordEnrollment() {
	c.enrollments.Inc()
}

// RecordTransfer はクラス移動を記録する。
func (c *Collector) RecordTransfer() {
	c.transfers.Inc()
}

// RecordConflict は競合エラーを記録する。
func (c *Collector) RecordConflict(code string) {
	c.conflicts.WithLabelValues(code).Inc()
}

// RecordRosterQuery は名簿集計クエリのレイテンシを記録する。
func (c *Collector) RecordRosterQuery(view string, duration time.Duration) {
	c.rosterQuery.WithLabelValues(view).Observe(duration.Seconds())
}

// RecordRepairedStudents は修復された受講生数を記録する。
func (c *Collector) RecordRepairedStudents(count int64) {
	c.repairedStudents.Add(float64(count))
}

// nopCollector は何も記録しないMetricsCollector。
type nopCollector struct{}

// Nop は何も記録しないMetricsCollectorを返す。
func Nop() MetricsCollector { return nopCollector{} }

func (nopCollector) RecordHTTPStatus(int) {}
func (nopCollector) RecordEnrollment() {}
func (nopCollector) RecordTransfer() {}
func (nopCollector) RecordConflict(string) {}
func (nopCollector) RecordRosterQuery(string, time.Duration) {}
func (nopCollector) RecordRepairedStudents(int64) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var _ MetricsCollector = (*Collector)(nil)
