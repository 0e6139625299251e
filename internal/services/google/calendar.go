package google

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/zenithflow/zenithflow/internal/models"
)

const (
	primaryCalendarID = "primary"
	maxListedEvents   = 100
	defaultEventMins  = 60
)

// CalendarService talks to the user's primary Google Calendar. It implements
// the cloudsync calendar contract.
type CalendarService struct {
	svc *calendarapi.Service
}

// NewCalendarService builds a calendar client from the user's token source.
func NewCalendarService(ctx context.Context, ts oauth2.TokenSource) (*CalendarService, error) {
	svc, err := calendarapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &CalendarService{svc: svc}, nil
}

// ListEvents fetches timed events from timeMin forward. All-day events carry
// no clock time and are skipped; the timeline cannot place them.
func (c *CalendarService) ListEvents(ctx context.Context, timeMin time.Time) ([]models.CalendarEvent, error) {
	resp, err := c.svc.Events.List(primaryCalendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin.Format(time.RFC3339)).
		MaxResults(maxListedEvents).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]models.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Start == nil || item.Start.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		duration := defaultEventMins
		if item.End != nil && item.End.DateTime != "" {
			if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil && end.After(start) {
				duration = int(end.Sub(start).Minutes())
			}
		}
		events = append(events, models.CalendarEvent{
			ID:              item.Id,
			Title:           item.Summary,
			Date:            start.Format("2006-01-02"),
			StartTime:       start.Format("15:04"),
			DurationMinutes: duration,
			Category:        models.EventCategoryOther,
			Notes:           item.Description,
			GoogleEventID:   item.Id,
		})
	}
	return events, nil
}

// InsertEvent creates a timed event and returns its id.
func (c *CalendarService) InsertEvent(ctx context.Context, title, date, startTime string, durationMinutes int) (string, error) {
	start, end, err := eventTimes(date, startTime, durationMinutes)
	if err != nil {
		return "", err
	}
	created, err := c.svc.Events.Insert(primaryCalendarID, &calendarapi.Event{
		Summary: title,
		Start:   &calendarapi.EventDateTime{DateTime: start},
		End:     &calendarapi.EventDateTime{DateTime: end},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent rewrites an event's title and times.
func (c *CalendarService) UpdateEvent(ctx context.Context, eventID, title, date, startTime string, durationMinutes int) error {
	start, end, err := eventTimes(date, startTime, durationMinutes)
	if err != nil {
		return err
	}
	_, err = c.svc.Events.Patch(primaryCalendarID, eventID, &calendarapi.Event{
		Summary: title,
		Start:   &calendarapi.EventDateTime{DateTime: start},
		End:     &calendarapi.EventDateTime{DateTime: end},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (c *CalendarService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.svc.Events.Delete(primaryCalendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

// eventTimes converts a local date, clock time, and duration into RFC3339
// start and end stamps.
func eventTimes(date, startTime string, durationMinutes int) (string, string, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, time.Local)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse event start %q %q: %w", date, startTime, err)
	}
	if durationMinutes <= 0 {
		durationMinutes = defaultEventMins
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return start.Format(time.RFC3339), end.Format(time.RFC3339), nil
}
