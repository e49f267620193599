// Package interval は半開区間 [Start, End) で表される時間区間の基本演算を提供する。
// 空き時間計算（減算）、複数人の共通空き時間（共通部分）の土台となる。
package interval

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidInterval は開始時刻が終了時刻以上の区間を生成しようとした場合のエラー。
var ErrInvalidInterval = errors.New("invalid interval: start must be before end")

// Interval は半開区間 [Start, End) を表す。
// 10:00に終わる区間と10:00に始まる区間は重ならない。
type Interval struct {
	Start time.Time
	End   time.Time
}

// New は区間を生成する。start >= end の場合はErrInvalidIntervalを返す。
// 長さ0の区間は不正として扱う。
func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: start=%s end=%s",
			ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Duration は区間の長さを返す。
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps は2つの区間が重なるかを返す。
// [s1, e1) と [s2, e2) は s1 < e2 かつ s2 < e1 のとき重なる。
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Clip は区間をwindowの範囲に切り詰める。
// 切り詰めた結果の長さが0以下になる場合はfalseを返す。
func (i Interval) Clip(window Interval) (Interval, bool) {
	start := latest(i.Start, window.Start)
	end := earliest(i.End, window.End)
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// Equal は開始・終了時刻がそれぞれ同一時点を指すかを返す。
// タイムゾーン表現の違いは無視する。
func (i Interval) Equal(o Interval) bool {
	return i.Start.Equal(o.Start) && i.End.Equal(o.End)
}

// String はRFC3339形式の文字列表現を返す。
func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// Merge は区間列を開始時刻でソートし、重なる区間・接する区間（a.End >= b.Start）を結合する。
// 入力は未ソート、重複、重なりを含んでいてよい。入力スライスは変更しない。
// 戻り値は互いに素で開始時刻昇順の最小の区間列。
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b Interval) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})

	merged := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !last.End.Before(cur.Start) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}

	return merged
}

// Subtract は window から busy の和集合を差し引いた区間列を返す。
// busy の各区間はwindowに切り詰めてから結合するため、
// windowの前日から始まる予定や翌日まで続く予定を含んでいてもよい。
// 長さ0の隙間は結果に含めない。
func Subtract(window Interval, busy []Interval) []Interval {
	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if c, ok := b.Clip(window); ok {
			clipped = append(clipped, c)
		}
	}

	var free []Interval
	cursor := window.Start
	for _, b := range Merge(clipped) {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if window.End.After(cursor) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}

	return free
}

// Intersect はソート済みかつ互いに素な2つの区間列の共通部分を返す。
// 2ポインタで走査し、先に終わる側の区間を進める。
// 可換かつ結合的なので、複数の区間列に対して左畳み込みで適用できる。
func Intersect(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := latest(a[i].Start, b[j].Start)
		end := earliest(a[i].End, b[j].End)
		if start.Before(end) {
			out = append(out, Interval{Start: start, End: end})
		}

		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
