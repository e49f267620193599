package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/meetplan/internal/attendee"
	"github.com/hitoshi/meetplan/internal/auth"
	"github.com/hitoshi/meetplan/internal/config"
	"github.com/hitoshi/meetplan/internal/database"
	"github.com/hitoshi/meetplan/internal/handler"
	"github.com/hitoshi/meetplan/internal/location"
	"github.com/hitoshi/meetplan/internal/logger"
	"github.com/hitoshi/meetplan/internal/meeting"
	"github.com/hitoshi/meetplan/internal/metrics"
	"github.com/hitoshi/meetplan/internal/middleware"
	"github.com/hitoshi/meetplan/internal/repository"
	"github.com/hitoshi/meetplan/internal/scheduling"
	"github.com/hitoshi/meetplan/internal/security"
	"github.com/hitoshi/meetplan/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("timezone", cfg.TimeZone.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandIssueToken:
		return runIssueToken(ctx, cfg, w, args[1:])
	default:
		return runServe(ctx, cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBPool)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	attendeeRepo := repository.NewPostgresAttendeeRepo(db)
	locationRepo := repository.NewPostgresLocationRepo(db)
	meetingRepo := repository.NewPostgresMeetingRepo(db)
	clientRepo := repository.NewPostgresAPIClientRepo(db)

	// 3. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// 4. ドメインサービスの初期化
	sanitizer := security.NewTextSanitizer()
	attendeeService := attendee.NewService(attendeeRepo, sanitizer)
	locationService := location.NewService(locationRepo, sanitizer)
	meetingService := meeting.NewService(meetingRepo, attendeeRepo, locationRepo, sanitizer)
	schedulingService := scheduling.NewService(attendeeRepo, locationRepo, meetingRepo, collector, scheduling.Config{
		TimeZone:     cfg.TimeZone,
		MaxAttendees: cfg.MaxSuggestionAttendees,
	})
	authService := auth.NewService(clientRepo)

	// 5. ルーターの構築
	// configのレート制限はreq/min単位
	rateLimiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitSuggest),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		HealthChecker:     db,
		TokenResolver:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		MetricsCollector: collector,
		Gatherer:         reg,

		AttendeeService:   attendeeService,
		LocationService:   locationService,
		MeetingService:    meetingService,
		SchedulingService: handler.NewSchedulingServiceAdapter(schedulingService),

		TimeZone: cfg.TimeZone,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、終了済み会議のクリーンアップジョブを定期実行する。
// ctxがキャンセルされるとシャットダウンする。
func runWorker(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBPool)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	// ワーカーは/metricsを公開しないため、件数はログのみで確認する
	job := cleanup.NewCleanupJob(repository.NewPostgresMeetingRepo(db), slog.Default(), nil)
	job.RetentionDays = cfg.MeetingRetentionDays

	// 3. ジョブをメインgoroutineで実行（ブロッキング）
	job.Start(ctx, cfg.CleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	latest, err := database.LatestVersion()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.Uint64("target_version", uint64(latest)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL, slog.Default()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// runIssueToken はAPIクライアントを登録し、発行したトークンをwに出力する。
// トークンはハッシュのみ保存されるため、再表示できない。
func runIssueToken(ctx context.Context, cfg *config.Config, w io.Writer, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return errors.New("usage: issue-token <client-name>")
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBPool)
	if err != nil {
		return err
	}
	defer db.Close()

	token, client, err := auth.NewService(repository.NewPostgresAPIClientRepo(db)).Issue(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if w == nil {
		w = os.Stdout
	}
	_, err = fmt.Fprintf(w, "client_id=%s\ntoken=%s\n", client.ID, token)
	return err
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// 解釈できないURLは全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
