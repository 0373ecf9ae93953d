/*
handlers_test.go - HTTP-level tests for the worklog API

Tests run against the real router and an in-memory SQLite store, with
the handler clock pinned so month-relative views are deterministic.
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/store/sqlite"
	"github.com/warp/worklog-engine/worklog"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	return newTestRouterTTL(t, time.Hour)
}

func newTestRouterTTL(t *testing.T, tokenTTL time.Duration) http.Handler {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, tokenTTL)
	h.now = func() worklog.CalendarDay {
		return worklog.NewCalendarDay(2024, time.March, 15)
	}
	return NewRouter(h, []string{"*"})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(into))
}

// registerUser creates an account and returns its session token.
func registerUser(t *testing.T, router http.Handler, username string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: username,
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register failed: %s", rec.Body.String())

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func worklogBody(date string, hours string, reason string) map[string]any {
	return map[string]any{
		"date":           date,
		"duration_hours": json.Number(hours),
		"reason":         reason,
	}
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestRegister_OpensSession(t *testing.T) {
	// GIVEN: A fresh username with valid credentials
	// WHEN: Registering
	// THEN: 201 with a token and the account, display name defaulted

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "amy",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "amy", resp.User.Username)
	assert.Equal(t, "amy", resp.User.DisplayName)
}

func TestRegister_RejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "ab", Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "username too short")

	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "amy", Password: "nodigits",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "password needs a digit")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "amy")

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "amy", Password: "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	// GIVEN: A registered account
	// WHEN: Logging in with right and wrong passwords
	// THEN: A fresh token, or 401 without leaking which field was wrong

	router := newTestRouter(t)
	registerUser(t, router, "amy")

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Username: "amy", Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AuthResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Username: "amy", Password: "wrong999",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Username: "ghost", Password: "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/worklogs", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_RequiresSession(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing token")

	rec = doJSON(t, router, http.MethodGet, "/api/worklogs", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unknown token")
}

func TestAPI_ExpiredSessionGets401(t *testing.T) {
	// GIVEN: A session token older than the configured TTL
	// WHEN: Hitting an authenticated endpoint
	// THEN: 401, so the client drops its cached token

	router := newTestRouterTTL(t, time.Nanosecond)
	token := registerUser(t, router, "amy")

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// WORKLOG CRUD TESTS
// =============================================================================

func TestCreateWorklog(t *testing.T) {
	// GIVEN: An authenticated user
	// WHEN: Creating a worklog
	// THEN: 201 with the stored record and the session comment

	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	rec := doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "1.5", "deploy"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp CreateWorklogResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Worklog.ID)
	assert.Equal(t, "2024-03-10", resp.Worklog.Date)
	assert.Equal(t, "2024-03-10", resp.Worklog.Day)
	assert.Equal(t, 1.5, resp.Worklog.DurationHours)
	assert.Equal(t, "趕快回家休息吧！", resp.Message)
}

func TestCreateWorklog_Validation(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	rec := doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "25", "too long"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "hours over the cap")

	rec = doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "2", "  "))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "blank reason")

	rec = doJSON(t, router, http.MethodPost, "/api/worklogs", token, map[string]any{
		"date": "2024-03-10", "duration_hours": "abc", "reason": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-numeric duration")

	rec = doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("03/10/2024", "2", "deploy"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unparseable date")
}

func TestCreateWorklog_SameDayConflict(t *testing.T) {
	// GIVEN: A record already on 2024-03-10
	// WHEN: Creating another for the same day
	// THEN: 409 with the existing record; overwrite replaces it in place

	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	first := doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "2", "deploy"))
	require.Equal(t, http.StatusCreated, first.Code)
	var created CreateWorklogResponse
	decodeBody(t, first, &created)

	rec := doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "3", "second try"))
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict ConflictResponse
	decodeBody(t, rec, &conflict)
	assert.Equal(t, created.Worklog.ID, conflict.Existing.ID)

	body := worklogBody("2024-03-10", "3", "second try")
	body["overwrite"] = true
	rec = doJSON(t, router, http.MethodPost, "/api/worklogs", token, body)
	require.Equal(t, http.StatusOK, rec.Code, "overwrite replaces, not creates")
	var replaced CreateWorklogResponse
	decodeBody(t, rec, &replaced)
	assert.Equal(t, created.Worklog.ID, replaced.Worklog.ID, "same record, replaced in place")
	assert.Equal(t, 3.0, replaced.Worklog.DurationHours)

	list := doJSON(t, router, http.MethodGet, "/api/worklogs", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var listing struct {
		Data []WorklogDTO `json:"data"`
	}
	decodeBody(t, list, &listing)
	assert.Len(t, listing.Data, 1)
}

func TestUpdateWorklog(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	first := doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "2", "deploy"))
	require.Equal(t, http.StatusCreated, first.Code)
	var created CreateWorklogResponse
	decodeBody(t, first, &created)

	rec := doJSON(t, router, http.MethodPut, "/api/worklogs/"+created.Worklog.ID, token,
		worklogBody("2024-03-10", "4", "deploy overran"))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated WorklogDTO
	decodeBody(t, rec, &updated)
	assert.Equal(t, 4.0, updated.DurationHours)
	assert.Equal(t, "deploy overran", updated.Reason)
}

func TestUpdateWorklog_Missing(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	rec := doJSON(t, router, http.MethodPut, "/api/worklogs/wl-999", token,
		worklogBody("2024-03-10", "1", "x"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteWorklog(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	first := doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "2", "deploy"))
	require.Equal(t, http.StatusCreated, first.Code)
	var created CreateWorklogResponse
	decodeBody(t, first, &created)

	rec := doJSON(t, router, http.MethodDelete, "/api/worklogs/"+created.Worklog.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/worklogs/"+created.Worklog.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListWorklogs_NewestDayFirst(t *testing.T) {
	// GIVEN: A record for a later day entered before one for an earlier
	//        day (backfill)
	// WHEN: Listing
	// THEN: Ordered by calendar day descending, not by entry time

	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-20", "2", "entered first")).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "1", "backfilled")).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Data []WorklogDTO `json:"data"`
	}
	decodeBody(t, rec, &listing)
	require.Len(t, listing.Data, 2)
	assert.Equal(t, "2024-03-20", listing.Data[0].Day)
	assert.Equal(t, "2024-03-10", listing.Data[1].Day)
}

func TestWorklogs_ScopedToUser(t *testing.T) {
	// GIVEN: Two users each with a record
	// WHEN: Listing as either user
	// THEN: Each sees only their own

	router := newTestRouter(t)
	amy := registerUser(t, router, "amy")
	bob := registerUser(t, router, "bob")

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/worklogs", amy,
		worklogBody("2024-03-10", "2", "amy's deploy")).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/worklogs", bob,
		worklogBody("2024-03-10", "1", "bob's deploy")).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs", amy, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Data []WorklogDTO `json:"data"`
	}
	decodeBody(t, rec, &listing)
	require.Len(t, listing.Data, 1)
	assert.Equal(t, "amy's deploy", listing.Data[0].Reason)
}

// =============================================================================
// DERIVED VIEW TESTS
// =============================================================================

func TestGetSummary(t *testing.T) {
	// GIVEN: Records in March and February 2024, clock pinned to Mar 15
	// WHEN: Fetching the summary
	// THEN: Both month totals plus the monthly comment for March

	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	for _, b := range []map[string]any{
		worklogBody("2024-03-01", "3", "deploy"),
		worklogBody("2024-02-28", "2", "incident"),
		worklogBody("2024-02-01", "1", "handover"),
	} {
		require.Equal(t, http.StatusCreated,
			doJSON(t, router, http.MethodPost, "/api/worklogs", token, b).Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary SummaryDTO
	decodeBody(t, rec, &summary)
	assert.Equal(t, 2024, summary.Current.Year)
	assert.Equal(t, 3, summary.Current.Month)
	assert.Equal(t, 3.0, summary.Current.TotalHours)
	assert.Equal(t, 1, summary.Current.Entries)
	assert.Equal(t, 2, summary.Previous.Month)
	assert.Equal(t, 3.0, summary.Previous.TotalHours)
	assert.Equal(t, "加班時數還算正常，繼續保持！", summary.Comment)
}

func TestGetHeatmap(t *testing.T) {
	// GIVEN: Sessions on March 9 and 10, clock pinned to Mar 15
	// WHEN: Fetching the heatmap
	// THEN: 28 cells ending Sunday 2024-03-17, the day at level 4

	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-10", "2", "morning")).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-03-09", "4.5", "long shift")).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs/heatmap", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Cells []HeatmapCellDTO `json:"cells"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Cells, worklog.GridDays)
	assert.Equal(t, "2024-02-19", resp.Cells[0].Day)
	assert.Equal(t, "2024-03-17", resp.Cells[27].Day)

	byDay := map[string]HeatmapCellDTO{}
	for _, c := range resp.Cells {
		byDay[c.Day] = c
	}
	assert.Equal(t, 4, byDay["2024-03-09"].Level)
	assert.Equal(t, 4.5, byDay["2024-03-09"].Hours)
	assert.Equal(t, 3, byDay["2024-03-10"].Level)
	assert.Equal(t, 0, byDay["2024-03-11"].Level)
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExportWorklogs_DefaultsToPreviousMonth(t *testing.T) {
	// GIVEN: A February record, clock pinned to Mar 15
	// WHEN: Exporting without query parameters
	// THEN: A CSV attachment for February with BOM and fixed header

	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2024-02-10", "1.5", "deploy")).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "overtime_2024_02.csv")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\uFEFF"))
	assert.Contains(t, body, "日期,時數,原因,備註\n")
	assert.Contains(t, body, "2024-02-10,1.5,deploy,\n")
}

func TestExportWorklogs_ExplicitMonth(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/worklogs", token,
		worklogBody("2023-12-20", "2", "year-end")).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs/export?year=2023&month=12", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "overtime_2023_12.csv")
	assert.Contains(t, rec.Body.String(), "2023-12-20,2,year-end,\n")

	rec = doJSON(t, router, http.MethodGet, "/api/worklogs/export?month=13", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportWorklogs_EmptyMonthIsANotice(t *testing.T) {
	// GIVEN: No records at all
	// WHEN: Exporting
	// THEN: 200 with an empty_report notice, not an error or empty file

	router := newTestRouter(t)
	token := registerUser(t, router, "amy")

	rec := doJSON(t, router, http.MethodGet, "/api/worklogs/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var notice NoticeResponse
	decodeBody(t, rec, &notice)
	assert.Equal(t, "empty_report", notice.Status)
	assert.Contains(t, notice.Message, "2024-02")
}
