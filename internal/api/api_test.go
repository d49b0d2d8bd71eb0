package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptlog/ptlog/internal/auth"
	"github.com/ptlog/ptlog/internal/enhance"
	"github.com/ptlog/ptlog/internal/export"
	"github.com/ptlog/ptlog/internal/services"
	"github.com/ptlog/ptlog/internal/store/sqlite"
	"github.com/ptlog/ptlog/internal/week"
)

type scriptedProvider struct{ reply string }

func (p *scriptedProvider) Complete(context.Context, enhance.CompletionRequest) (string, error) {
	return p.reply, nil
}

const enhanceReply = `{"title":"Distribution board wiring","entries":[{"dayName":"Monday","description":"Installed and terminated conduit runs"}],"steps":[{"operation":"Mark out layout","tools":"tape"}]}`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st, err := sqlite.OpenStore(filepath.Join(t.TempDir(), "ptlog_test.db"))
	require.NoError(t, err)

	cal := week.MustCalendar(time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC))
	userSvc := services.NewUserService(st)
	reportSvc := services.NewReportService(st, cal)
	checklistSvc := services.NewChecklistService(st)
	snapshotSvc := services.NewSnapshotService(st, reportSvc, checklistSvc)
	billingSvc := services.NewBillingService(st)
	gateway := enhance.NewService(
		&scriptedProvider{reply: enhanceReply},
		reportSvc, checklistSvc, snapshotSvc, billingSvc, userSvc,
		5*time.Second, 2000,
	)

	return NewRouter(Deps{
		Users:      userSvc,
		Reports:    reportSvc,
		Checklists: checklistSvc,
		Snapshots:  snapshotSvc,
		Billing:    billingSvc,
		Gateway:    gateway,
		Renderer:   export.NewTextRenderer(),
		Authorizer: auth.NewLocalDevAuthorizer(),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

func createUser(t *testing.T, h http.Handler, userID string) {
	t.Helper()
	rr := do(t, h, "POST", "/api/users",
		`{"userId":"`+userID+`","email":"`+userID+`@example.test","program":"Electrical Engineering","companyName":"Acme Switchgear"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestUserLifecycle(t *testing.T) {
	h := newTestRouter(t)

	createUser(t, h, "student1")

	// Duplicate IDs conflict.
	rr := do(t, h, "POST", "/api/users", `{"userId":"student1","email":"student1@example.test"}`, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, "GET", "/api/users/student1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode(t, rr)
	assert.Equal(t, "Acme Switchgear", got["companyName"])

	rr = do(t, h, "GET", "/api/users/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, "PUT", "/api/users/student1/profile", `{"program":"Mechatronics","supervisorName":"R. Osei"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got = decode(t, rr)
	assert.Equal(t, "Mechatronics", got["program"])
}

func TestEntryAndWeekEndpoints(t *testing.T) {
	h := newTestRouter(t)
	createUser(t, h, "student1")

	// Validation failures map to 400.
	rr := do(t, h, "PUT", "/api/users/student1/entries", `{"date":"2025-08-04","description":"work","hours":14}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, "PUT", "/api/users/student1/entries", `{"date":"2025-08-09","description":"work","hours":8}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, "PUT", "/api/users/student1/entries", `{"date":"not-a-date","description":"work","hours":8}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	for _, body := range []string{
		`{"date":"2025-08-04","description":"cable tray installation","hours":7}`,
		`{"date":"2025-08-05","description":"panel terminations","hours":6.5}`,
		`{"date":"2025-08-06","description":"continuity testing","hours":7.5}`,
	} {
		rr = do(t, h, "PUT", "/api/users/student1/entries", body, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = do(t, h, "GET", "/api/users/student1/weeks/3", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	wk := decode(t, rr)
	assert.Equal(t, float64(3), wk["entryCount"])
	assert.Equal(t, "21", wk["totalHours"])
	assert.Equal(t, false, wk["isComplete"])

	rr = do(t, h, "GET", "/api/users/student1/entries?week=3", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	lst := decode(t, rr)
	assert.Equal(t, float64(3), lst["count"])

	rr = do(t, h, "DELETE", "/api/users/student1/entries/2025-08-06", "", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, h, "GET", "/api/users/student1/weeks/3", "", nil)
	wk = decode(t, rr)
	assert.Equal(t, float64(2), wk["entryCount"])

	rr = do(t, h, "GET", "/api/users/student1/weeks/9", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestChecklistEndpoints(t *testing.T) {
	h := newTestRouter(t)
	createUser(t, h, "student1")

	rr := do(t, h, "PUT", "/api/users/student1/weeks/3/checklist", `{"title":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "PUT", "/api/users/student1/weeks/3/checklist", `{"title":"Panel wiring"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, "PUT", "/api/users/student1/weeks/3/checklist/steps",
		`{"steps":[{"operation":"Mark out layout","tools":"tape"},{"operation":"Fix trunking"}]}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, "GET", "/api/users/student1/weeks/3/checklist", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cl := decode(t, rr)
	steps := cl["steps"].([]interface{})
	require.Len(t, steps, 2)
	assert.Equal(t, float64(1), steps[0].(map[string]interface{})["stepNumber"])
}

func TestEnhanceRevertAndExportEndpoints(t *testing.T) {
	h := newTestRouter(t)
	createUser(t, h, "student1")

	for _, body := range []string{
		`{"date":"2025-08-04","description":"raw monday notes","hours":7}`,
		`{"date":"2025-08-05","description":"raw tuesday notes","hours":6}`,
		`{"date":"2025-08-06","description":"raw wednesday notes","hours":8}`,
	} {
		rr := do(t, h, "PUT", "/api/users/student1/entries", body, nil)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := do(t, h, "POST", "/api/users/student1/weeks/3/enhance", `{"instructions":"formal tone"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	out := decode(t, rr)
	assert.Equal(t, float64(400), out["tokensCharged"])
	assert.Equal(t, float64(0), out["tokensLeft"])

	// Balance is drained; a second run is refused with 402.
	rr = do(t, h, "POST", "/api/users/student1/weeks/3/enhance", "", nil)
	assert.Equal(t, http.StatusPaymentRequired, rr.Code)

	rr = do(t, h, "GET", "/api/users/student1/weeks/3/export", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rr.Body.String(), "Installed and terminated conduit runs")
	assert.Contains(t, rr.Body.String(), "Distribution board wiring")

	rr = do(t, h, "POST", "/api/users/student1/weeks/3/revert", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, "GET", "/api/users/student1/entries?week=3", "", nil)
	assert.Contains(t, rr.Body.String(), "raw monday notes")

	rr = do(t, h, "POST", "/api/users/student1/weeks/8/revert", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBillingEndpoints(t *testing.T) {
	h := newTestRouter(t)
	createUser(t, h, "student1")
	staff := map[string]string{"Authorization": "Bearer " + auth.LocalDevStaffKey}
	student := map[string]string{"Authorization": "Bearer " + auth.LocalDevStudentKey}

	rr := do(t, h, "GET", "/api/users/student1/balance", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	bal := decode(t, rr)
	assert.Equal(t, true, bal["canEnhance"])

	rr = do(t, h, "POST", "/api/users/student1/transactions",
		`{"amount":"1000","method":"DIRECT","senderName":"A Parent"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tx := decode(t, rr)
	txID := tx["txId"].(string)

	// Approval needs a staff key.
	rr = do(t, h, "POST", "/api/transactions/"+txID+"/approve", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = do(t, h, "POST", "/api/transactions/"+txID+"/approve", "", student)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, h, "GET", "/api/transactions/pending", "", staff)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), decode(t, rr)["count"])

	rr = do(t, h, "POST", "/api/transactions/"+txID+"/approve", "", staff)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	approved := decode(t, rr)
	assert.Equal(t, "APPROVED", approved["status"])
	assert.Equal(t, float64(300), approved["tokensGranted"])

	// One-way transition: a repeat approval conflicts.
	rr = do(t, h, "POST", "/api/transactions/"+txID+"/approve", "", staff)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, "GET", "/api/users/student1/transactions/summary", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	sum := decode(t, rr)
	assert.Equal(t, float64(300), sum["tokensGranted"])
	assert.Equal(t, float64(0), sum["pendingCount"])
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(t)
	BindServiceHealth(func() bool { return true })
	defer BindServiceHealth(func() bool { return false })

	rr := do(t, h, "GET", "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode(t, rr)["status"])
}
