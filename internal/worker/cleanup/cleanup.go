// Package cleanup は終了済み会議の自動削除ジョブを提供する。
// 保持期間（デフォルト365日）より前に終了した会議を定期バッチで削除する。
// meeting_attendeesはCASCADE削除で自動的に処理される。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/meetplan/internal/metrics"
)

// MeetingDeleter は終了済み会議の削除を抽象化するインターフェース。
// repository.MeetingRepository が満たす。
type MeetingDeleter interface {
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob は保持期間を超過した会議の自動削除ジョブ。
// 冪等な削除処理のため、何度実行しても結果は変わらない。
type CleanupJob struct {
	meetings      MeetingDeleter
	logger        *slog.Logger
	metrics       metrics.MetricsCollector
	now           func() time.Time
	RetentionDays int // 会議の保持日数（デフォルト: 365）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は365日。collectorがnilの場合はメトリクスを記録しない。
func NewCleanupJob(meetings MeetingDeleter, logger *slog.Logger, collector metrics.MetricsCollector) *CleanupJob {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &CleanupJob{
		meetings:      meetings,
		logger:        logger,
		metrics:       collector,
		now:           time.Now,
		RetentionDays: 365,
	}
}

// Run は保持期間を超過した会議を削除する。
// end_timeがRetentionDays日前より古い会議をDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()
	cutoff := j.now().AddDate(0, 0, -j.RetentionDays)

	deletedCount, err := j.meetings.DeleteEndedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("会議クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("会議クリーンアップの実行に失敗: %w", err)
	}
	j.metrics.RecordMeetingsCleaned(deletedCount)

	duration := time.Since(start)
	j.logger.Info("会議クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Time("cutoff", cutoff),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start は指定間隔のティッカーでジョブを起動する。
// 起動直後に1回実行し、コンテキストがキャンセルされるまで実行を継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("会議クリーンアップジョブを開始しました",
		slog.Duration("interval", interval),
		slog.Int("retention_days", j.RetentionDays),
	)

	// エラーはRun内でログ出力済み
	_ = j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("会議クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
