package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleMirror mirrors events into a Google Calendar using a service
// account.
type GoogleMirror struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	logger     *slog.Logger
}

// NewGoogleMirror builds a mirror from service account credentials.
func NewGoogleMirror(ctx context.Context, credentialsFile, calendarID, timezone string, logger *slog.Logger) (*GoogleMirror, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	svc, err := gcal.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleMirror{
		svc:        svc,
		calendarID: calendarID,
		loc:        loc,
		logger:     logger,
	}, nil
}

// CreateEvent inserts an event with a client-generated ID so that a retry
// after a timeout cannot produce a duplicate.
func (m *GoogleMirror) CreateEvent(ctx context.Context, ev Event) (string, error) {
	id := newEventID()
	_, err := m.svc.Events.Insert(m.calendarID, m.buildEvent(id, ev)).Context(ctx).Do()
	if err != nil {
		// 409 means a previous attempt with this ID already landed.
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 409 {
			return id, nil
		}
		return "", fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// UpdateEvent rewrites the title and times of a mirrored event.
func (m *GoogleMirror) UpdateEvent(ctx context.Context, ref string, ev Event) error {
	if ref == "" {
		return fmt.Errorf("empty event ref")
	}
	_, err := m.svc.Events.Update(m.calendarID, ref, m.buildEvent(ref, ev)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// DeleteEvent removes a mirrored event. Deleting an already-deleted event
// is not an error.
func (m *GoogleMirror) DeleteEvent(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("empty event ref")
	}
	if err := m.svc.Events.Delete(m.calendarID, ref).Context(ctx).Do(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
			return nil
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (m *GoogleMirror) buildEvent(id string, ev Event) *gcal.Event {
	return &gcal.Event{
		Id:      id,
		Summary: ev.Title,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.In(m.loc).Format(time.RFC3339),
			TimeZone: m.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.In(m.loc).Format(time.RFC3339),
			TimeZone: m.loc.String(),
		},
	}
}

// newEventID returns a Calendar-API-legal event ID. The API accepts
// base32hex characters, which hex-encoded UUIDs satisfy.
func newEventID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
