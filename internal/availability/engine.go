package availability

import (
	"cmp"
	"slices"
	"time"

	"github.com/hitoshi/meetplan/internal/interval"
)

// Entity は空き時間計算の対象となる参加者1人分のスナップショット。
// Hoursがnilの場合は勤務時間未設定として扱う。
type Entity struct {
	ID     string
	Hours  *WorkingHours
	Booked []interval.Interval
}

// Location は会議場所1件分のスナップショット。
// Capacityがnilの場合は定員不明として扱う。
type Location struct {
	ID       string
	Name     string
	Capacity *int
	Hours    *WorkingHours
	Booked   []interval.Interval
}

// HasCapacity は定員がn人以上であることが分かっている場合にtrueを返す。
// 定員不明の場所は十分とはみなさない。
func (l Location) HasCapacity(n int) bool {
	return l.Capacity != nil && *l.Capacity >= n
}

// LocationSlot は場所と、その場所で確保できる空き区間の組。
type LocationSlot struct {
	Location Location
	Slot     interval.Interval
}

// Suggestion は会議候補（開始・終了・場所）を表す。
type Suggestion struct {
	Start    time.Time
	End      time.Time
	Location Location
}

// FreeSlots は勤務時間と予定から指定日の空き区間を返す。
// 勤務時間が未設定（nil）の場合は予定を入れられる時間がないものとして空を返す。
// bookedは未ソート・重なりありでよい。
func FreeSlots(hours *WorkingHours, date time.Time, booked []interval.Interval) []interval.Interval {
	if hours == nil {
		return nil
	}
	return interval.Subtract(hours.On(date), booked)
}

// CommonFreeSlots は全員が同時に空いている区間を返す。
// 各参加者の空き区間を個別に計算し、共通部分を左畳み込みで求める。
// 参加者が0人の場合、または誰か1人でも空きがない場合は空を返す。
func CommonFreeSlots(date time.Time, entities []Entity) []interval.Interval {
	if len(entities) == 0 {
		return nil
	}

	var common []interval.Interval
	for i, e := range entities {
		free := FreeSlots(e.Hours, date, e.Booked)
		if len(free) == 0 {
			return nil
		}
		if i == 0 {
			common = free
			continue
		}
		common = interval.Intersect(common, free)
		if len(common) == 0 {
			return nil
		}
	}
	return common
}

// AtLeast は長さがd以上の区間のみを返す。区間自体は縮めない。
func AtLeast(intervals []interval.Interval, d time.Duration) []interval.Interval {
	var out []interval.Interval
	for _, iv := range intervals {
		if iv.Duration() >= d {
			out = append(out, iv)
		}
	}
	return out
}

// FindByDuration は指定日にd以上の空き区間を持つ場所を列挙する。
// minCapacityが指定された場合は定員がそれ以上の場所に限定する（定員不明の場所は除外）。
// 1つの場所が複数の空き区間を持つ場合は区間ごとに1件出力する。
// 結果は場所ID昇順、次に開始時刻昇順。
func FindByDuration(date time.Time, d time.Duration, minCapacity *int, locations []Location) []LocationSlot {
	var out []LocationSlot
	for _, loc := range sortedByID(locations) {
		if minCapacity != nil && !loc.HasCapacity(*minCapacity) {
			continue
		}
		for _, slot := range AtLeast(FreeSlots(loc.Hours, date, loc.Booked), d) {
			out = append(out, LocationSlot{Location: loc, Slot: slot})
		}
	}
	return out
}

// Suggest は参加者全員が空いていて、かつ参加人数以上の定員を持つ場所が空いている会議候補を返す。
//
// 参加者の共通空き区間のうちd以上のものを窓とし、窓と場所の空き区間の重なりがd以上となる
// (窓, 場所) の組ごとに、最も早い重なりの開始時刻から長さdの候補を1件作る。
//
// 並び順は開始時刻昇順。同時刻の場合は定員の小さい場所（足りる中で最小の部屋）を優先し、
// さらに同じ場合は場所ID昇順とする。条件を満たす組がなければ空を返す。
func Suggest(date time.Time, d time.Duration, attendees []Entity, locations []Location) []Suggestion {
	if d <= 0 || len(attendees) == 0 {
		return nil
	}

	windows := AtLeast(CommonFreeSlots(date, attendees), d)
	if len(windows) == 0 {
		return nil
	}

	type room struct {
		loc  Location
		free []interval.Interval
	}

	headcount := distinctCount(attendees)
	var rooms []room
	for _, loc := range sortedByID(locations) {
		if !loc.HasCapacity(headcount) {
			continue
		}
		free := FreeSlots(loc.Hours, date, loc.Booked)
		if len(free) == 0 {
			continue
		}
		rooms = append(rooms, room{loc: loc, free: free})
	}

	var out []Suggestion
	for _, w := range windows {
		for _, r := range rooms {
			overlaps := AtLeast(interval.Intersect([]interval.Interval{w}, r.free), d)
			if len(overlaps) == 0 {
				continue
			}
			start := overlaps[0].Start
			out = append(out, Suggestion{Start: start, End: start.Add(d), Location: r.loc})
		}
	}

	slices.SortStableFunc(out, compareSuggestions)
	return out
}

func compareSuggestions(a, b Suggestion) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	if c := cmp.Compare(*a.Location.Capacity, *b.Location.Capacity); c != 0 {
		return c
	}
	return cmp.Compare(a.Location.ID, b.Location.ID)
}

func sortedByID(locations []Location) []Location {
	sorted := slices.Clone(locations)
	slices.SortStableFunc(sorted, func(a, b Location) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

func distinctCount(entities []Entity) int {
	seen := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		seen[e.ID] = struct{}{}
	}
	return len(seen)
}
