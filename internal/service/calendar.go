package service

import (
	"context"
	"fmt"
	"time"

	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

type calendarService struct {
	calendarRepo         repository.CalendarRepository
	openWhenUnconfigured bool
}

// NewCalendarService builds the calendar view. With openWhenUnconfigured
// set, a calendar that has no business-hour rows at all is open every day.
func NewCalendarService(calendarRepo repository.CalendarRepository, openWhenUnconfigured bool) CalendarService {
	return &calendarService{calendarRepo: calendarRepo, openWhenUnconfigured: openWhenUnconfigured}
}

func (s *calendarService) GetHolidaysInRange(ctx context.Context, from, to time.Time) ([]string, error) {
	holidays, err := s.calendarRepo.ListHolidays(ctx, utils.DateOnly(from), utils.DateOnly(to))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(holidays))
	for _, h := range holidays {
		names = append(names, h.Name)
	}
	return names, nil
}

// GetClosedDatesInRange returns the days whose weekday has no enabled
// business-hour row.
func (s *calendarService) GetClosedDatesInRange(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	hours, err := s.calendarRepo.ListBusinessHours(ctx)
	if err != nil {
		return nil, err
	}
	if len(hours) == 0 && s.openWhenUnconfigured {
		return nil, nil
	}

	open := make(map[time.Weekday]bool, 7)
	for _, h := range hours {
		if h.Enabled {
			open[h.DayOfWeek] = true
		}
	}

	var closed []time.Time
	for _, day := range utils.EachDay(from, to) {
		if !open[day.Weekday()] {
			closed = append(closed, day)
		}
	}
	return closed, nil
}

// ValidateRangeForBooking checks that pickup and return both fall on open,
// non-holiday days. It returns one message per problem; none means valid.
func (s *calendarService) ValidateRangeForBooking(ctx context.Context, from, to time.Time) ([]string, error) {
	from, to = utils.DateOnly(from), utils.DateOnly(to)
	if to.Before(from) {
		return []string{"End date must be on or after start date"}, nil
	}

	holidays, err := s.calendarRepo.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	closed, err := s.GetClosedDatesInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var problems []string
	endpoints := []struct {
		label string
		day   time.Time
	}{{"Pickup", from}, {"Return", to}}
	for _, ep := range endpoints {
		if ep.label == "Return" && ep.day.Equal(from) {
			break
		}
		for _, h := range holidays {
			if utils.DateOnly(h.Date).Equal(ep.day) {
				problems = append(problems, fmt.Sprintf("%s date %s is a holiday (%s)", ep.label, utils.FormatDate(ep.day), h.Name))
			}
		}
		for _, c := range closed {
			if c.Equal(ep.day) {
				problems = append(problems, fmt.Sprintf("%s date %s falls on a closed day (%s)", ep.label, utils.FormatDate(ep.day), ep.day.Weekday()))
			}
		}
	}
	return problems, nil
}
