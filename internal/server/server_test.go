package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/auth"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/config"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/mail"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/testutil"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type env struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newEnv(t *testing.T) *env {
	cfg := &config.Config{
		JWTSecret:          testutil.TestSecret,
		JWTExpire:          time.Hour,
		CookieExpireDays:   30,
		Env:                "production",
		CORSOrigins:        "http://localhost:3000",
		LogLevel:           "error",
		PublicBaseURL:      "http://example.test",
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		AuditRetentionDays: 90,
	}
	db := testutil.NewDB(t)
	return &env{t: t, app: New(db, cfg, mail.LogMailer{}), db: db}
}

func (e *env) token(u *models.User) string {
	tok, err := auth.GenerateToken(testutil.TestSecret, u, time.Hour)
	require.NoError(e.t, err)
	return tok
}

type result struct {
	status int
	header http.Header
	raw    []byte
	body   map[string]any
}

func (e *env) do(method, path, token string, body any) result {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)

	out := result{status: resp.StatusCode, header: resp.Header}
	out.raw, err = io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON && len(out.raw) > 0 {
		require.NoError(e.t, json.Unmarshal(out.raw, &out.body), string(out.raw))
	}
	return out
}

func items(t *testing.T, r result) []map[string]any {
	t.Helper()
	list, ok := r.body["data"].([]any)
	require.True(t, ok, string(r.raw))
	out := make([]map[string]any, 0, len(list))
	for _, it := range list {
		out = append(out, it.(map[string]any))
	}
	return out
}

func venueBody(name string) map[string]any {
	return map[string]any{
		"name":       name,
		"address":    "99 Sukhumvit Road",
		"district":   "Watthana",
		"province":   "Bangkok",
		"postalCode": "10110",
		"tel":        "02-111-2222",
		"region":     "Central",
	}
}

func TestVenueRoutes(t *testing.T) {
	e := newEnv(t)
	admin := e.token(testutil.CreateUser(t, e.db, models.RoleAdmin))
	user := e.token(testutil.CreateUser(t, e.db, models.RoleUser))

	res := e.do(http.MethodPost, "/api/v1/venues", "", venueBody("Sky Bar"))
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = e.do(http.MethodPost, "/api/v1/venues", user, venueBody("Sky Bar"))
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = e.do(http.MethodPost, "/api/v1/venues", admin, venueBody("  Sky Bar  "))
	require.Equal(t, fiber.StatusCreated, res.status, string(res.raw))
	created := res.body["data"].(map[string]any)
	assert.Equal(t, "Sky Bar", created["name"])
	assert.Equal(t, "09:00", created["openTime"])
	assert.Equal(t, "22:00", created["closeTime"])
	id := int(created["id"].(float64))

	res = e.do(http.MethodPost, "/api/v1/venues", admin, venueBody("Sky Bar"))
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "Venue name 'Sky Bar' already exists", res.body["message"])

	bad := venueBody("Broken")
	bad["postalCode"] = "1234567"
	bad["openTime"] = "9am"
	delete(bad, "region")
	res = e.do(http.MethodPost, "/api/v1/venues", admin, bad)
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Contains(t, res.body["message"], "region is required")
	assert.Contains(t, res.body["message"], "postalCode can not be more than 5 characters")
	assert.Contains(t, res.body["message"], "Please provide valid openTime format (HH:MM)")

	res = e.do(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d", id), "", nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, "Sky Bar", res.body["data"].(map[string]any)["name"])

	res = e.do(http.MethodGet, "/api/v1/venues/9999", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
	assert.Equal(t, "No venue with the id of 9999", res.body["message"])

	res = e.do(http.MethodPut, fmt.Sprintf("/api/v1/venues/%d", id), admin, map[string]any{"closeTime": "23:30", "tel": ""})
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	assert.Equal(t, "23:30", res.body["data"].(map[string]any)["closeTime"])
	assert.Equal(t, "", res.body["data"].(map[string]any)["tel"])

	res = e.do(http.MethodPut, fmt.Sprintf("/api/v1/venues/%d", id), admin, map[string]any{"name": " "})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "name is required", res.body["message"])

	res = e.do(http.MethodGet, "/api/v1/venues?province=Bangkok&select=name", "", nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, float64(1), res.body["count"])
	assert.Equal(t, float64(1), res.body["total"])
	assert.Equal(t, map[string]any{}, res.body["pagination"])
	list := items(t, res)
	assert.Len(t, list[0], 2)
}

func TestVenueDeleteCascades(t *testing.T) {
	e := newEnv(t)
	adminUser := testutil.CreateUser(t, e.db, models.RoleAdmin)
	admin := e.token(adminUser)
	owner := testutil.CreateUser(t, e.db, models.RoleUser)
	v := testutil.CreateVenue(t, e.db, "Closing Down")
	for i := 0; i < 2; i++ {
		res := e.do(http.MethodPost, fmt.Sprintf("/api/v1/venues/%d/reservations", v.ID), e.token(owner), map[string]any{"resvDate": "2026-07-01T20:00"})
		require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	}

	res := e.do(http.MethodDelete, fmt.Sprintf("/api/v1/venues/%d", v.ID), admin, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	assert.Equal(t, true, res.body["success"])

	var count int64
	require.NoError(t, e.db.Model(&models.Reservation{}).Where("venue_id = ?", v.ID).Count(&count).Error)
	assert.Zero(t, count)

	res = e.do(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d", v.ID), "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)

	res = e.do(http.MethodGet, "/api/v1/audit-logs?entityType=venue&action=delete", admin, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	assert.Equal(t, float64(1), res.body["total"])
}

func TestReservationCap(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.db, models.RoleUser)
	tok := e.token(user)
	v := testutil.CreateVenue(t, e.db, "Popular")
	path := fmt.Sprintf("/api/v1/venues/%d/reservations", v.ID)

	for i := 1; i <= 3; i++ {
		res := e.do(http.MethodPost, path, tok, map[string]any{"resvDate": fmt.Sprintf("2026-07-0%dT20:00:00Z", i)})
		require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
		data := res.body["data"].(map[string]any)
		assert.Equal(t, float64(user.ID), data["userId"])
		assert.Equal(t, "Popular", data["venue"].(map[string]any)["name"])
	}

	res := e.do(http.MethodPost, path, tok, map[string]any{"resvDate": "2026-07-09T20:00:00Z"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, false, res.body["success"])
	assert.Equal(t, fmt.Sprintf("The user with ID %d has already made 3 reservations", user.ID), res.body["message"])

	res = e.do(http.MethodPost, path, tok, map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "resvDate is required", res.body["message"])

	res = e.do(http.MethodPost, path, tok, map[string]any{"resvDate": "next friday"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = e.do(http.MethodPost, "/api/v1/venues/4242/reservations", tok, map[string]any{"resvDate": "2026-07-09"})
	assert.Equal(t, fiber.StatusNotFound, res.status)
}

func TestReservationListing(t *testing.T) {
	e := newEnv(t)
	adminUser := testutil.CreateUser(t, e.db, models.RoleAdmin)
	admin := e.token(adminUser)
	alice := testutil.CreateUser(t, e.db, models.RoleUser)
	bob := testutil.CreateUser(t, e.db, models.RoleUser)
	v1 := testutil.CreateVenue(t, e.db, "One")
	v2 := testutil.CreateVenue(t, e.db, "Two")

	book := func(u *models.User, v *models.Venue, date string) {
		res := e.do(http.MethodPost, fmt.Sprintf("/api/v1/venues/%d/reservations", v.ID), e.token(u), map[string]any{"resvDate": date})
		require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	}
	book(alice, v1, "2026-08-01")
	book(alice, v2, "2026-08-02")
	book(bob, v1, "2026-08-03")
	book(bob, v2, "2026-08-04")
	book(bob, v1, "2026-08-05")

	// a user sees only their own, whatever they filter on
	res := e.do(http.MethodGet, fmt.Sprintf("/api/v1/reservations?userId=%d", bob.ID), e.token(alice), nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	assert.Equal(t, float64(2), res.body["total"])
	for _, it := range items(t, res) {
		assert.Equal(t, float64(alice.ID), it["userId"])
	}

	// an admin under a venue route sees that venue's reservations
	res = e.do(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d/reservations", v1.ID), admin, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, float64(3), res.body["total"])
	for _, it := range items(t, res) {
		assert.Equal(t, float64(v1.ID), it["venueId"])
		venue, ok := it["venue"].(map[string]any)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"id", "name", "province", "tel"}, keys(venue))
		assert.Equal(t, "One", venue["name"])
	}

	res = e.do(http.MethodGet, "/api/v1/reservations?sort=-resvDate&limit=2&page=1", admin, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, float64(2), res.body["count"])
	assert.Equal(t, float64(5), res.body["total"])
	assert.Equal(t, map[string]any{"next": map[string]any{"page": float64(2), "limit": float64(2)}}, res.body["pagination"])
	list := items(t, res)
	assert.Equal(t, "2026-08-05T00:00:00Z", list[0]["resvDate"])
	assert.Equal(t, "2026-08-04T00:00:00Z", list[1]["resvDate"])

	res = e.do(http.MethodGet, "/api/v1/dashboard/reservations?from=2026-08-01&count=5", admin, nil)
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	chart := res.body["data"].(map[string]any)
	assert.Equal(t, float64(5), chart["total"])
	assert.Len(t, chart["points"], 5)

	res = e.do(http.MethodGet, "/api/v1/dashboard/reservations?period=hourly", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = e.do(http.MethodGet, "/api/v1/reservations?resvDate[gte]=2026-08-03&resvDate[lt]=2026-08-05", admin, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, float64(2), res.body["total"])

	res = e.do(http.MethodGet, "/api/v1/reservations?select=resvDate", admin, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	for _, it := range items(t, res) {
		assert.ElementsMatch(t, []string{"id", "resvDate"}, keys(it))
	}

	res = e.do(http.MethodGet, "/api/v1/reservations?resvDate[where]=1", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = e.do(http.MethodGet, "/api/v1/reservations", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestReservationReadUpdateDelete(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, models.RoleUser)
	other := testutil.CreateUser(t, e.db, models.RoleUser)
	admin := e.token(testutil.CreateUser(t, e.db, models.RoleAdmin))
	v1 := testutil.CreateVenue(t, e.db, "Old")
	v2 := testutil.CreateVenue(t, e.db, "New")

	res := e.do(http.MethodPost, fmt.Sprintf("/api/v1/venues/%d/reservations", v1.ID), e.token(owner), map[string]any{"resvDate": "2026-09-01T18:00:00Z"})
	require.Equal(t, fiber.StatusOK, res.status)
	path := fmt.Sprintf("/api/v1/reservations/%d", int(res.body["data"].(map[string]any)["id"].(float64)))

	res = e.do(http.MethodGet, path, e.token(other), nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = e.do(http.MethodGet, path, admin, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	venue := res.body["data"].(map[string]any)["venue"].(map[string]any)
	assert.Equal(t, map[string]any{"id": float64(v1.ID), "name": "Old", "province": "Bangkok", "tel": "02-000-0000"}, venue)

	res = e.do(http.MethodPut, path, e.token(other), map[string]any{"resvDate": "2026-09-02"})
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
	assert.Equal(t, fmt.Sprintf("User %d is not authorized to update this reservation", other.ID), res.body["message"])

	res = e.do(http.MethodPut, path, e.token(owner), map[string]any{"resvDate": "2026-09-02T19:30:00Z", "venueId": v2.ID})
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	data := res.body["data"].(map[string]any)
	assert.Equal(t, "2026-09-02T19:30:00Z", data["resvDate"])
	assert.Equal(t, "New", data["venue"].(map[string]any)["name"])

	res = e.do(http.MethodDelete, path, e.token(other), nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = e.do(http.MethodDelete, path, e.token(owner), nil)
	require.Equal(t, fiber.StatusOK, res.status)

	res = e.do(http.MethodGet, path, e.token(owner), nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)

	res = e.do(http.MethodGet, "/api/v1/reservations/abc", e.token(owner), nil)
	assert.Equal(t, fiber.StatusBadRequest, res.status)
}

func TestReservationExport(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.db, models.RoleUser)
	admin := e.token(testutil.CreateUser(t, e.db, models.RoleAdmin))
	v := testutil.CreateVenue(t, e.db, "Spreadsheet")
	for _, d := range []string{"2026-10-01", "2026-10-02"} {
		res := e.do(http.MethodPost, fmt.Sprintf("/api/v1/venues/%d/reservations", v.ID), e.token(user), map[string]any{"resvDate": d})
		require.Equal(t, fiber.StatusOK, res.status)
	}

	res := e.do(http.MethodGet, "/api/v1/reservations/export", e.token(user), nil)
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = e.do(http.MethodGet, "/api/v1/reservations/export?sort=resvDate", admin, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Contains(t, res.header.Get("Content-Disposition"), "reservations-")

	f, err := excelize.OpenReader(bytes.NewReader(res.raw))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Reservations")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, user.Email, rows[1][4])
	assert.Equal(t, "Spreadsheet", rows[1][6])
}

func TestAuthRoutesMounted(t *testing.T) {
	e := newEnv(t)

	res := e.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name": "Carol", "email": "carol@example.com", "telephone": "0899999999", "password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, res.status, string(res.raw))
	tok := res.body["token"].(string)

	res = e.do(http.MethodGet, "/api/v1/auth/me", tok, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, "user", res.body["data"].(map[string]any)["role"])

	res = e.do(http.MethodGet, "/api/v1/audit-logs", tok, nil)
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = e.do(http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
	assert.Equal(t, false, res.body["success"])
}
