package meeting

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/hitoshi/meetplan/internal/model"
)

// maxExportRange はカレンダー出力で指定できる期間の上限。
const maxExportRange = 366 * 24 * time.Hour

const productID = "-//meetplan//EN"

// ExportCalendar は参加者が出席する会議のうち [from, to) と重なるものをiCalendar形式で返す。
// 場所名と他の参加者のメールアドレスも含める。
func (s *Service) ExportCalendar(ctx context.Context, attendeeID string, from, to time.Time) (*ical.Calendar, error) {
	if !from.Before(to) || to.Sub(from) > maxExportRange {
		return nil, model.NewInvalidTimeRangeError()
	}

	owner, err := s.attendees.FindByID(ctx, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	if owner == nil {
		return nil, model.NewAttendeeNotFoundError(attendeeID)
	}

	meetings, err := s.meetings.ListByAttendee(ctx, attendeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("会議一覧の取得に失敗しました: %w", err)
	}

	emails, err := s.attendeeEmails(ctx, meetings)
	if err != nil {
		return nil, err
	}
	locationNames, err := s.locationNames(ctx, meetings)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC()
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", owner.Name)
	for _, m := range meetings {
		cal.Children = append(cal.Children, toEvent(m, stamp, locationNames, emails))
	}
	return cal, nil
}

func toEvent(m *model.Meeting, stamp time.Time, locationNames, emails map[string]string) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, m.ID+"@meetplan")
	ve.Props.SetText(ical.PropSummary, m.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ve.Props.SetDateTime(ical.PropDateTimeStart, m.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, m.EndTime.UTC())

	if m.Description != "" {
		ve.Props.SetText(ical.PropDescription, m.Description)
	}
	if name, ok := locationNames[m.LocationID]; ok {
		ve.Props.SetText(ical.PropLocation, name)
	}
	for _, id := range m.AttendeeIDs {
		email, ok := emails[id]
		if !ok {
			continue
		}
		p := ical.NewProp(ical.PropAttendee)
		p.SetText("mailto:" + email)
		ve.Props.Add(p)
	}
	return ve
}

func (s *Service) attendeeEmails(ctx context.Context, meetings []*model.Meeting) (map[string]string, error) {
	var ids []string
	for _, m := range meetings {
		ids = append(ids, m.AttendeeIDs...)
	}
	ids = model.UniqueIDs(ids)
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	found, err := s.attendees.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	emails := make(map[string]string, len(found))
	for _, a := range found {
		emails[a.ID] = a.Email
	}
	return emails, nil
}

func (s *Service) locationNames(ctx context.Context, meetings []*model.Meeting) (map[string]string, error) {
	names := make(map[string]string)
	for _, m := range meetings {
		if m.LocationID == "" {
			continue
		}
		if _, ok := names[m.LocationID]; ok {
			continue
		}
		loc, err := s.locations.FindByID(ctx, m.LocationID)
		if err != nil {
			return nil, fmt.Errorf("場所の取得に失敗しました: %w", err)
		}
		if loc != nil {
			names[m.LocationID] = loc.Name
		}
	}
	return names, nil
}
