package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnfcrew/assignment-engine/api"
	"github.com/fnfcrew/assignment-engine/crew"
	"github.com/fnfcrew/assignment-engine/store/csvfile"
	"github.com/fnfcrew/assignment-engine/xlsxio"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// testEnv is one isolated server over a temp data directory.
type testEnv struct {
	server *httptest.Server
	ledger *csvfile.LedgerStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	// Three influencers: follower order C > A > B, so C ranks first.
	roster := "id,name,follower,unit_fee,mlb_qty,dx_qty,dv_qty,st_qty,total_qty\n" +
		"inf_a,김민지,100000,350000,2,1,1,1,5\n" +
		"inf_b,이수현,50000,200000,1,1,0,0,2\n" +
		"inf_c,박서연,200000,500000,1,0,1,0,2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, csvfile.RosterFileName), []byte(roster), 0o644))

	log := logrus.New()
	log.SetOutput(io.Discard)

	ledger := csvfile.NewLedgerStore(dir)
	h := api.NewHandler(csvfile.NewRosterStore(dir), ledger, crew.Season25FW, log)
	server := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(server.Close)

	return &testEnv{server: server, ledger: ledger}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) delete(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, e.server.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func runAssignment(t *testing.T, env *testEnv, month string, requests map[string]int) {
	t.Helper()
	resp := env.postJSON(t, "/api/assignments/run", map[string]any{
		"month": month, "requests": requests,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func uploadExecutions(t *testing.T, env *testEnv, rows []map[string]any) {
	t.Helper()
	resp := env.postJSON(t, "/api/executions", map[string]any{"rows": rows})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// =============================================================================
// ROSTER
// =============================================================================

func TestListRoster(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/roster")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var roster []map[string]any
	decodeBody(t, resp, &roster)
	require.Len(t, roster, 3)
	assert.Equal(t, "inf_a", roster[0]["id"])
	assert.Equal(t, "350000", roster[0]["unit_fee"])
}

func TestRosterSummary_XLSXFormat(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/roster/summary?format=xlsx")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "influencer_summary")
}

// =============================================================================
// ASSIGNMENT RUN
// =============================================================================

func TestRunAssignment_RanksByFollower(t *testing.T) {
	// GIVEN: MLB request for 2 slots; follower order inf_c > inf_a > inf_b
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/assignments/run", map[string]any{
		"month":    "9월",
		"requests": map[string]int{"MLB": 2},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Month    string         `json:"month"`
		Assigned map[string]int `json:"assigned"`
		Records  []struct {
			InfluencerID string `json:"influencer_id"`
			Brand        string `json:"brand"`
		} `json:"records"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "9월", out.Month)
	assert.Equal(t, 2, out.Assigned["MLB"])
	require.Len(t, out.Records, 2)
	assert.Equal(t, "inf_c", out.Records[0].InfluencerID)
	assert.Equal(t, "inf_a", out.Records[1].InfluencerID)

	// Persisted to the ledger, not just returned.
	saved, err := env.ledger.LoadAssignments()
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestRunAssignment_BlockedByExistingExecutions_409(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 1})
	uploadExecutions(t, env, []map[string]any{{
		"brand": "MLB", "influencer_id": "inf_c", "influencer_name": "박서연",
		"month": "9월", "actual_qty": 1,
	}})

	// Re-running 9월 after its executions landed must conflict.
	resp := env.postJSON(t, "/api/assignments/run", map[string]any{
		"month":    "9월",
		"requests": map[string]int{"DX": 1},
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var out struct {
		Gate struct {
			Reason string `json:"reason"`
			Month  string `json:"month"`
		} `json:"gate"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "BLOCKED_EXECUTION_EXISTS", out.Gate.Reason)
	assert.Equal(t, "9월", out.Gate.Month)
}

func TestRunAssignment_BlockedByMissingPriorExecutions_409(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 1})

	resp := env.postJSON(t, "/api/assignments/run", map[string]any{
		"month":    "10월",
		"requests": map[string]int{"MLB": 1},
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var out struct {
		Gate struct {
			Reason      string `json:"reason"`
			Month       string `json:"month"`
			Assignments []struct {
				InfluencerID string `json:"influencer_id"`
			} `json:"assignments"`
		} `json:"gate"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "BLOCKED_MISSING_EXECUTION", out.Gate.Reason)
	assert.Equal(t, "9월", out.Gate.Month)
	require.Len(t, out.Gate.Assignments, 1)
	assert.Equal(t, "inf_c", out.Gate.Assignments[0].InfluencerID)
}

func TestRunAssignment_UnknownBrand_400(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/assignments/run", map[string]any{
		"month":    "9월",
		"requests": map[string]int{"NIKE": 1},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunAssignment_UnknownMonth_400(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/assignments/run", map[string]any{
		"month":    "5월",
		"requests": map[string]int{"MLB": 1},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// MANUAL ASSIGNMENT
// =============================================================================

func TestManualAssignment_Created(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/assignments/manual", map[string]any{
		"month": "9월", "brand": "DX", "influencer_id": "inf_b",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out map[string]any
	decodeBody(t, resp, &out)
	assert.Equal(t, "inf_b", out["influencer_id"])
	assert.Equal(t, "DX", out["brand"])
}

func TestManualAssignment_Duplicate_422(t *testing.T) {
	env := newTestEnv(t)
	first := env.postJSON(t, "/api/assignments/manual", map[string]any{
		"month": "9월", "brand": "DX", "influencer_id": "inf_b",
	})
	first.Body.Close()
	require.Equal(t, http.StatusCreated, first.StatusCode)

	resp := env.postJSON(t, "/api/assignments/manual", map[string]any{
		"month": "9월", "brand": "DX", "influencer_id": "inf_b",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestManualAssignment_UnknownInfluencer_404(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/assignments/manual", map[string]any{
		"month": "9월", "brand": "MLB", "influencer_id": "nobody",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// EXECUTION UPLOAD
// =============================================================================

func TestUploadExecutions_JSON_SavedToLedger(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 1})

	resp := env.postJSON(t, "/api/executions", map[string]any{
		"rows": []map[string]any{{
			"brand": "MLB", "influencer_id": "inf_c", "influencer_name": "박서연",
			"month": "9월", "actual_qty": 1,
		}},
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out []map[string]any
	decodeBody(t, resp, &out)
	require.Len(t, out, 1)
	// PlannedQty defaults to 1 when the JSON omits it.
	assert.Equal(t, float64(1), out[0]["planned_qty"])

	saved, err := env.ledger.LoadExecutions()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 1, saved[0].ActualQty)
}

func TestUploadExecutions_NoMatchingAssignment_422(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/executions", map[string]any{
		"rows": []map[string]any{{
			"brand": "DX", "influencer_id": "inf_a", "influencer_name": "김민지",
			"month": "9월", "actual_qty": 1,
		}},
	})

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var out struct {
		Validation []struct {
			Code         string `json:"code"`
			InfluencerID string `json:"influencer_id"`
			Brand        string `json:"brand"`
			Month        string `json:"month"`
		} `json:"validation"`
	}
	decodeBody(t, resp, &out)
	require.Len(t, out.Validation, 1)
	assert.Equal(t, "no_matching_assignment", out.Validation[0].Code)
	assert.Equal(t, "inf_a", out.Validation[0].InfluencerID)
	assert.Equal(t, "DX", out.Validation[0].Brand)
	assert.Equal(t, "9월", out.Validation[0].Month)

	// All-or-nothing: nothing saved.
	saved, err := env.ledger.LoadExecutions()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestUploadExecutions_MultipartWorkbook(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 1})

	var workbook bytes.Buffer
	require.NoError(t, xlsxio.WriteExecutions(&workbook, []crew.ExecutionRecord{{
		Brand: crew.BrandMLB, InfluencerID: "inf_c", InfluencerName: "박서연",
		Month: "9월", PlannedQty: 1, ActualQty: 1,
	}}))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "executions.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err := http.Post(env.server.URL+"/api/executions", form.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved, err := env.ledger.LoadExecutions()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, crew.InfluencerID("inf_c"), saved[0].InfluencerID)
}

func TestExecutionTemplate_AlwaysXLSX(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 1})

	resp := env.get(t, "/api/executions/template")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "execution_template")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	rows, verrs, err := xlsxio.ParseExecutionUpload(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Empty(t, verrs)
	require.Len(t, rows, 1)
	assert.Equal(t, crew.InfluencerID("inf_c"), rows[0].InfluencerID)
	assert.Equal(t, 0, rows[0].ActualQty)
}

// =============================================================================
// LISTING AND RECONCILIATION
// =============================================================================

func TestListAssignments_CarriesReconciledActuals(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 2})
	uploadExecutions(t, env, []map[string]any{{
		"brand": "MLB", "influencer_id": "inf_c", "influencer_name": "박서연",
		"month": "9월", "actual_qty": 1,
	}})

	resp := env.get(t, "/api/assignments")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []struct {
		InfluencerID string `json:"influencer_id"`
		BrandActual  int    `json:"brand_actual_qty"`
	}
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].BrandActual)
	assert.Equal(t, 0, rows[1].BrandActual)
}

func TestListAssignments_MonthFilter(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 1, "DX": 1})

	resp := env.get(t, "/api/assignments?brand=DX")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []struct {
		Brand string `json:"brand"`
	}
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "DX", rows[0].Brand)
}

func TestMismatches_ListsUnexecutedAssignments(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 2})
	uploadExecutions(t, env, []map[string]any{{
		"brand": "MLB", "influencer_id": "inf_c", "influencer_name": "박서연",
		"month": "9월", "actual_qty": 1,
	}})

	resp := env.get(t, "/api/reconciliation/mismatches")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []struct {
		InfluencerID string `json:"influencer_id"`
	}
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "inf_a", rows[0].InfluencerID)
}

// =============================================================================
// RESET
// =============================================================================

func TestResetAssignments_Full(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 2})

	resp := env.delete(t, "/api/assignments")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		RemovedAssignments int `json:"removed_assignments"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, 2, out.RemovedAssignments)

	saved, err := env.ledger.LoadAssignments()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestResetAssignments_MonthCascade(t *testing.T) {
	env := newTestEnv(t)
	runAssignment(t, env, "9월", map[string]int{"MLB": 1})
	uploadExecutions(t, env, []map[string]any{{
		"brand": "MLB", "influencer_id": "inf_c", "influencer_name": "박서연",
		"month": "9월", "actual_qty": 1,
	}})
	runAssignment(t, env, "10월", map[string]int{"DX": 1})

	// Resetting from 10월 leaves 9월 intact in both ledgers.
	resp := env.delete(t, "/api/assignments?month="+url.QueryEscape("10월"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		RemovedAssignments int      `json:"removed_assignments"`
		RemovedMonths      []string `json:"removed_months"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, 1, out.RemovedAssignments)
	assert.Contains(t, out.RemovedMonths, "10월")
	assert.NotContains(t, out.RemovedMonths, "9월")

	assignments, err := env.ledger.LoadAssignments()
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, crew.Month("9월"), assignments[0].Month)

	executions, err := env.ledger.LoadExecutions()
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestResetAssignments_UnknownMonth_400(t *testing.T) {
	env := newTestEnv(t)

	resp := env.delete(t, "/api/assignments?month="+url.QueryEscape("5월"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
