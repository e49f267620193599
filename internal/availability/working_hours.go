// Package availability は空き時間の計算と会議候補の提案を行う純粋な計算エンジンを提供する。
//
// エンジンはデータの取得・永続化を行わない。呼び出し側が勤務時間と予定区間の
// スナップショットを渡し、エンジンは計算結果のみを返す。
// 全ての関数は入力を変更せず、同一入力に対して同一順序の結果を返す。
package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/meetplan/internal/interval"
)

// ErrInvalidWorkingHours は勤務時間の指定が不正な場合のエラー。
var ErrInvalidWorkingHours = errors.New("invalid working hours")

// WorkingHours は1日の中で予定を入れられる時間帯を表す。
// Start・Endはその日の0時からのオフセット。日付をまたぐ勤務時間は扱わない。
type WorkingHours struct {
	Start time.Duration
	End   time.Duration
}

// NewWorkingHours は勤務時間を生成する。
// 0 <= start < end <= 24h を満たさない場合はErrInvalidWorkingHoursを返す。
func NewWorkingHours(start, end time.Duration) (WorkingHours, error) {
	if start < 0 || end > 24*time.Hour {
		return WorkingHours{}, fmt.Errorf("%w: %s-%s is out of the day", ErrInvalidWorkingHours, FormatClock(start), FormatClock(end))
	}
	if start >= end {
		return WorkingHours{}, fmt.Errorf("%w: start %s must be before end %s", ErrInvalidWorkingHours, FormatClock(start), FormatClock(end))
	}
	return WorkingHours{Start: start, End: end}, nil
}

// ParseWorkingHours は "09:00" 形式の開始・終了時刻から勤務時間を生成する。
func ParseWorkingHours(start, end string) (WorkingHours, error) {
	s, err := ParseClock(start)
	if err != nil {
		return WorkingHours{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return WorkingHours{}, err
	}
	return NewWorkingHours(s, e)
}

// ParseOptionalWorkingHours は未設定を許す勤務時間を生成する。
// 開始・終了の両方が空の場合はnilを返す。片方のみの指定はErrInvalidWorkingHoursとする。
func ParseOptionalWorkingHours(start, end string) (*WorkingHours, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, fmt.Errorf("%w: both start and end are required", ErrInvalidWorkingHours)
	}
	wh, err := ParseWorkingHours(start, end)
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

// ParseClock は "15:04" または "15:04:05" 形式の時刻を0時からのオフセットに変換する。
// 終業時刻の表現として "24:00" も受け付ける。
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" || s == "24:00:00" {
		return 24 * time.Hour, nil
	}

	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse time of day %q", ErrInvalidWorkingHours, s)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// FormatClock は0時からのオフセットを "15:04" 形式にする。
// 秒が0でない場合は "15:04:05" 形式とし、ParseClockで元の値に戻せるようにする。
func FormatClock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	s := int((d % time.Minute) / time.Second)
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// On は指定日の勤務時間帯を具体的な区間として返す。
// 日付のタイムゾーンで壁時計時刻を組み立てるため、夏時間の切り替え日でも表記どおりの時刻になる。
func (w WorkingHours) On(date time.Time) interval.Interval {
	return interval.Interval{
		Start: clockOn(date, w.Start),
		End:   clockOn(date, w.End),
	}
}

// String は "09:00-17:00" 形式の文字列を返す。
func (w WorkingHours) String() string {
	return FormatClock(w.Start) + "-" + FormatClock(w.End)
}

// DayStart は指定日の0時を返す。
func DayStart(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

// DayRange は指定日の [0時, 翌日0時) を返す。
// 予定の取得範囲として使う。
func DayRange(date time.Time) interval.Interval {
	start := DayStart(date)
	return interval.Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

func clockOn(date time.Time, offset time.Duration) time.Time {
	y, m, d := date.Date()
	h := int(offset / time.Hour)
	minute := int((offset % time.Hour) / time.Minute)
	sec := int((offset % time.Minute) / time.Second)
	return time.Date(y, m, d, h, minute, sec, 0, date.Location())
}
