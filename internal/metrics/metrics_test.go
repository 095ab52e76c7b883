package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetricFamily はレジストリから指定名のメトリクスファミリーを取得する。
func findMetricFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	if c := NewCollector(reg); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はステータスコード別にカウントされることを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	mf := findMetricFamily(t, reg, "turmas_http_status_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		label := m.GetLabel()[0].GetValue()
		val := m.GetCounter().GetValue()
		switch label {
		case "200":
			if val != 2 {
				t.Errorf("http_status_total{status_code=200} = %v, want 2", val)
			}
		case "404":
			if val != 1 {
				t.Errorf("http_status_total{status_code=404} = %v, want 1", val)
			}
		default:
			t.Errorf("unexpected label value: %s", label)
		}
	}
}

// TestRecordEnrollmentAndTransfer は登録・移動カウンタが増加することを検証する。
func TestRecordEnrollmentAndTransfer(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordEnrollment()
	c.RecordEnrollment()
	c.RecordTransfer()

	if v := findMetricFamily(t, reg, "turmas_enrollments_total").GetMetric()[0].GetCounter().GetValue(); v != 2 {
		t.Errorf("enrollments_total = %v, want 2", v)
	}
	if v := findMetricFamily(t, reg, "turmas_transfers_total").GetMetric()[0].GetCounter().GetValue(); v != 1 {
		t.Errorf("transfers_total = %v, want 1", v)
	}
}

// TestRecordConflict_LabelsByCode はエラーコードがラベルとして付与されることを検証する。
func TestRecordConflict_LabelsByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordConflict("CLASS_NOT_EMPTY")

	m := findMetricFamily(t, reg, "turmas_conflicts_total").GetMetric()[0]
	if got := m.GetLabel()[0].GetValue(); got != "CLASS_NOT_EMPTY" {
		t.Errorf("code label = %q, want CLASS_NOT_EMPTY", got)
	}
}

// TestRecordRosterQuery_ObservesHistogram はビュー別のヒストグラムに値が記録されることを検証する。
func TestRecordRosterQuery_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRosterQuery(ViewByClass, 100*time.Millisecond)
	c.RecordRosterQuery(ViewByClass, 2*time.Second)

	h := findMetricFamily(t, reg, "turmas_roster_query_seconds").GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
	}
	// 合計は0.1 + 2.0 = 2.1秒
	if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
		t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
	}
}

func TestRecordRepairedStudents_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRepairedStudents(3)
	c.RecordRepairedStudents(0)

	if v := findMetricFamily(t, reg, "turmas_repaired_students_total").GetMetric()[0].GetCounter().GetValue(); v != 3 {
		t.Errorf("repaired_students_total = %v, want 3", v)
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(201)
	c.RecordEnrollment()
	c.RecordConflict("DUPLICATE_TUTOR_EMAIL")
	c.RecordRosterQuery(ViewNameSearch, 5*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)
	for _, metric := range []string{
		"turmas_http_status_total",
		"turmas_enrollments_total",
		"turmas_conflicts_total",
		"turmas_roster_query_seconds",
	} {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	_ = NewCollector(reg2)

	c1.RecordEnrollment()

	if v := findMetricFamily(t, reg1, "turmas_enrollments_total").GetMetric()[0].GetCounter().GetValue(); v != 1 {
		t.Errorf("reg1 enrollments_total = %v, want 1", v)
	}
	if v := findMetricFamily(t, reg2, "turmas_enrollments_total").GetMetric()[0].GetCounter().GetValue(); v != 0 {
		t.Errorf("reg2 enrollments_total = %v, want 0", v)
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	m := Nop()
	m.RecordHTTPStatus(500)
	m.RecordEnrollment()
	m.RecordTransfer()
	m.RecordConflict("X")
	m.RecordRosterQuery(ViewByClass, time.Second)
	m.RecordRepairedStudents(1)
}
