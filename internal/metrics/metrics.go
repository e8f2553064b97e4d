package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "settlement_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	generateTotal   *prometheus.CounterVec
	generateLatency *prometheus.HistogramVec
	transitionTotal *prometheus.CounterVec
	exportTotal     *prometheus.CounterVec
	exportLatency   *prometheus.HistogramVec
	amountTotal     *prometheus.CounterVec
	eventTotal      *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
)

// Init 注册结算相关指标，重复调用无副作用
func Init() {
	registerOnce.Do(func() {
		generateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "generate_total",
				Help: "Total seller settlement generations by outcome",
			},
			[]string{"outcome"},
		)
		generateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "generate_latency_seconds",
				Help:    "Seller settlement generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		)
		transitionTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "transition_total",
				Help: "Total settlement status transitions by target status and result",
			},
			[]string{"to", "result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total settlement statement exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Settlement statement export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		amountTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "amount_total",
				Help: "Sum of settled amounts in minor currency units by kind",
			},
			[]string{"kind"},
		)
		eventTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_published_total",
				Help: "Total settlement events published by routing key and result",
			},
			[]string{"event", "result"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "Admin API request latency in seconds by route and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		)
		prometheus.MustRegister(
			generateTotal,
			generateLatency,
			transitionTotal,
			exportTotal,
			exportLatency,
			amountTotal,
			eventTotal,
			httpLatency,
		)
	})
}

// Handler 返回 Prometheus 抓取端点
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveGenerate 记录单个商家结算生成的结果与耗时
func ObserveGenerate(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	if generateTotal != nil {
		generateTotal.WithLabelValues(outcome).Inc()
	}
	if generateLatency != nil {
		generateLatency.WithLabelValues(outcome).Observe(duration.Seconds())
	}
}

// IncTransition 记录状态流转
func IncTransition(to string, err error) {
	if transitionTotal == nil {
		return
	}
	transitionTotal.WithLabelValues(to, resultOf(err)).Inc()
}

// ObserveExport 记录导出结果与耗时
func ObserveExport(format string, err error, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, resultOf(err)).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// AddCompletedAmounts 结算完成时累计订单额、佣金与结算额
func AddCompletedAmounts(orderAmount, commission, settlement int64) {
	if amountTotal == nil {
		return
	}
	amountTotal.WithLabelValues("order").Add(float64(orderAmount))
	amountTotal.WithLabelValues("commission").Add(float64(commission))
	amountTotal.WithLabelValues("settlement").Add(float64(settlement))
}

// IncEvent 记录事件投递结果
func IncEvent(event string, err error) {
	if eventTotal == nil {
		return
	}
	eventTotal.WithLabelValues(event, resultOf(err)).Inc()
}

// ObserveHTTPRequest 记录接口请求耗时，route 为路由模板
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if httpLatency == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	httpLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
