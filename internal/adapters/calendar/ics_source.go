package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/httpx"
	"parking-planner-service/internal/platform/obs"
)

// Upper bound on an ICS payload.
const maxBodyBytes = 5 << 20

var ErrLocalFilesDisabled = errors.New("local calendar files are not allowed")

// ICSSource reads iCalendar feeds from http(s) URLs, or from local paths
// when AllowFiles is set.
type ICSSource struct {
	client     *httpx.Client
	AllowFiles bool
}

func NewICSSource(allowFiles bool) *ICSSource {
	return &ICSSource{
		client:     httpx.NewClient(15 * time.Second),
		AllowFiles: allowFiles,
	}
}

// EntriesForDay returns the timed entries overlapping the local day of
// `day` (midnight to midnight in day's location), sorted by start.
func (s *ICSSource) EntriesForDay(
	ctx context.Context,
	ref string,
	day time.Time,
) (_ []domain.CalendarEntry, err error) {
	defer obs.Time(ctx, "calendar.EntriesForDay")(&err)

	body, err := s.load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("calendar entries: %w", err)
	}

	events, err := parseCalendar(body)
	if err != nil {
		return nil, fmt.Errorf("calendar entries: %w", err)
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return expandDay(events, from, from.AddDate(0, 0, 1)), nil
}

func (s *ICSSource) load(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s.fetch(ctx, ref)
	}
	// webcal:// is the conventional scheme for subscribed calendars.
	if strings.HasPrefix(lower, "webcal://") {
		return s.fetch(ctx, "https://"+ref[len("webcal://"):])
	}

	if !s.AllowFiles {
		return nil, ErrLocalFilesDisabled
	}
	body, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", ref, err)
	}
	return body, nil
}

func (s *ICSSource) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/calendar")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("fetch calendar: body exceeds %d bytes", maxBodyBytes)
	}
	return body, nil
}
