package model

import "slices"

// UniqueIDs は空文字を除いた重複なしの昇順スライスを返す。
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// FirstMissingAttendee はidsのうちfoundに含まれない最初のIDを返す。全て存在する場合は空文字。
func FirstMissingAttendee(ids []string, found []*Attendee) string {
	known := make(map[string]struct{}, len(found))
	for _, a := range found {
		known[a.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return id
		}
	}
	return ""
}
