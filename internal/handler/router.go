package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/meetplan/internal/metrics"
	"github.com/hitoshi/meetplan/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	TokenResolver     middleware.TokenResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nilの場合は記録・公開しない）
	MetricsCollector metrics.MetricsCollector
	Gatherer         prometheus.Gatherer

	// サービス
	AttendeeService   AttendeeServiceInterface
	LocationService   LocationServiceInterface
	MeetingService    MeetingServiceInterface
	SchedulingService SchedulingServiceInterface

	// TimeZone はレスポンスの時刻表示と日付のみのクエリ解釈に使う。
	TimeZone *time.Location
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Metrics → Logging → CORS → (/api) TokenAuth → RateLimit(General)
//
// /health と /metrics は認証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.MetricsCollector
	if collector == nil {
		collector = metrics.Nop{}
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(metrics.StatusMiddleware(collector))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	attendeeHandler := NewAttendeeHandler(deps.AttendeeService)
	locationHandler := NewLocationHandler(deps.LocationService)
	meetingHandler := NewMeetingHandler(deps.MeetingService, deps.TimeZone)
	availabilityHandler := NewAvailabilityHandler(deps.SchedulingService)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.SetupMetricsRoute(deps.Gatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: TokenAuth → RateLimit(General)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewTokenAuthMiddleware(deps.TokenResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/attendees", func(r chi.Router) {
			r.Get("/", attendeeHandler.List)
			r.Post("/", attendeeHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", attendeeHandler.Get)
				r.Put("/", attendeeHandler.Update)
				r.Delete("/", attendeeHandler.Delete)
				r.Get("/availability", availabilityHandler.AttendeeAvailability)
				r.Get("/calendar.ics", meetingHandler.Calendar)
			})
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", locationHandler.List)
			r.Post("/", locationHandler.Create)
			// 空き検索は重いため専用のレート制限を追加
			r.With(deps.RateLimiter.QueryMiddleware()).Post("/search", availabilityHandler.SearchLocations)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", locationHandler.Get)
				r.Put("/", locationHandler.Update)
				r.Delete("/", locationHandler.Delete)
				r.Get("/availability", availabilityHandler.LocationAvailability)
			})
		})

		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", meetingHandler.List)
			r.Post("/", meetingHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", meetingHandler.Get)
				r.Put("/", meetingHandler.Update)
				r.Delete("/", meetingHandler.Delete)
			})
		})

		r.Post("/availability/common", availabilityHandler.CommonAvailability)
		r.With(deps.RateLimiter.QueryMiddleware()).Post("/suggestions", availabilityHandler.Suggest)
	})

	return r
}
