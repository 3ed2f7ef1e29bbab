// Package dashboard serves aggregate views for administrators.
package dashboard

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/apperr"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/httpx"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/query"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

var defaultCount = map[Period]int{Daily: 7, Weekly: 8, Monthly: 12}

type ChartPoint struct {
	Label string `json:"label"` // first day of the bucket
	Count int64  `json:"count"`
}

type VenueTotal struct {
	VenueID uint   `json:"venueId"`
	Name    string `json:"name"`
	Count   int64  `json:"count"`
}

type ReservationChart struct {
	VenueID *uint        `json:"venueId,omitempty"`
	Period  Period       `json:"period"`
	From    string       `json:"from"`
	To      string       `json:"to"` // exclusive
	Points  []ChartPoint `json:"points"`
	Venues  []VenueTotal `json:"venues"`
	Total   int64        `json:"total"`
}

type ChartRequest struct {
	Period  Period
	Count   int
	From    time.Time
	VenueID *uint
}

// bucketStart truncates t to the start of its day, ISO week or month in UTC.
func bucketStart(p Period, t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func next(p Period, t time.Time) time.Time {
	switch p {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// BuildReservationChart counts reservations dated within Count buckets starting at the
// bucket containing From. Empty buckets are reported with a zero count.
func BuildReservationChart(ctx context.Context, db *gorm.DB, req ChartRequest) (*ReservationChart, error) {
	start := bucketStart(req.Period, req.From)
	bounds := []time.Time{start}
	for i := 0; i < req.Count; i++ {
		bounds = append(bounds, next(req.Period, bounds[len(bounds)-1]))
	}
	end := bounds[len(bounds)-1]

	type row struct {
		ResvDate time.Time
		VenueID  uint
	}
	var rows []row
	q := db.WithContext(ctx).Model(&models.Reservation{}).
		Select("resv_date", "venue_id").
		Where("resv_date >= ? AND resv_date < ?", start, end)
	if req.VenueID != nil {
		q = q.Where("venue_id = ?", *req.VenueID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperr.Wrap(err, "Cannot aggregate reservations")
	}

	counts := make(map[time.Time]int64, req.Count)
	perVenue := map[uint]int64{}
	for _, r := range rows {
		counts[bucketStart(req.Period, r.ResvDate)]++
		perVenue[r.VenueID]++
	}

	chart := &ReservationChart{
		VenueID: req.VenueID,
		Period:  req.Period,
		From:    start.Format(dateLayout),
		To:      end.Format(dateLayout),
		Points:  make([]ChartPoint, 0, req.Count),
		Venues:  make([]VenueTotal, 0, len(perVenue)),
		Total:   int64(len(rows)),
	}
	for _, b := range bounds[:req.Count] {
		chart.Points = append(chart.Points, ChartPoint{Label: b.Format(dateLayout), Count: counts[b]})
	}

	if len(perVenue) > 0 {
		ids := make([]uint, 0, len(perVenue))
		for id := range perVenue {
			ids = append(ids, id)
		}
		var venues []models.Venue
		if err := db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&venues).Error; err != nil {
			return nil, apperr.Wrap(err, "Cannot aggregate reservations")
		}
		for _, v := range venues {
			chart.Venues = append(chart.Venues, VenueTotal{VenueID: v.ID, Name: v.Name, Count: perVenue[v.ID]})
		}
		sort.Slice(chart.Venues, func(i, j int) bool {
			if chart.Venues[i].Count != chart.Venues[j].Count {
				return chart.Venues[i].Count > chart.Venues[j].Count
			}
			return chart.Venues[i].VenueID < chart.Venues[j].VenueID
		})
	}
	return chart, nil
}

func parseChartRequest(c *fiber.Ctx, now time.Time) (ChartRequest, error) {
	req := ChartRequest{Period: Period(c.Query("period", string(Daily)))}
	def, ok := defaultCount[req.Period]
	if !ok {
		return req, apperr.Validationf("period must be one of daily, weekly, monthly")
	}

	req.Count = def
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 366 {
			return req, apperr.Validationf("count must be between 1 and 366")
		}
		req.Count = n
	}

	req.From = now
	if raw := c.Query("from"); raw != "" {
		t, ok := query.ParseTime(raw)
		if !ok {
			return req, apperr.Validationf("from must be a date")
		}
		req.From = t
	}

	if raw := c.Query("venueId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return req, apperr.Validationf("Invalid venue id")
		}
		v := uint(id)
		req.VenueID = &v
	}
	return req, nil
}

// GET /api/v1/dashboard/reservations?period=weekly&count=4&from=2026-01-05&venueId=1
func ReservationChartHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseChartRequest(c, time.Now())
		if err != nil {
			return err
		}
		chart, err := BuildReservationChart(c.UserContext(), db, req)
		if err != nil {
			return err
		}
		return httpx.OK(c, chart)
	}
}
