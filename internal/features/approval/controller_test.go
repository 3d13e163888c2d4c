package approval

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-approvals/internal/common/models"
	"go-approvals/internal/config"
	"go-approvals/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(f *fixture) *fiber.App {
	app := fiber.New()
	NewApprovalApi(NewApprovalController(f.svc), &config.Config{SkipAuth: true}).Setup(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, actorID, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actorID != "" {
		req.Header.Set(middleware.DevUserHeader, actorID)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestApprovalApi_CreateAndDecide(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)

	resp := do(t, app, http.MethodPost, "/api/tasks", f.requester.ID,
		`{"title":"Monitor","urgency":"CRITICAL","approver_id":"`+f.approver.ID+`"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	task := decode[models.ApprovalTask](t, resp)
	assert.Equal(t, models.UrgencyCritical, task.Urgency)

	resp = do(t, app, http.MethodPost, "/api/tasks/"+task.ID+"/approve", f.outsider.ID, `{}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/tasks/"+task.ID+"/reject", f.approver.ID, `{"comment":""}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/tasks/"+task.ID+"/approve", f.approver.ID, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	approved := decode[models.ApprovalTask](t, resp)
	assert.Equal(t, models.TaskStatusApproved, approved.Status)

	resp = do(t, app, http.MethodPost, "/api/tasks/"+task.ID+"/approve", f.approver.ID, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/tasks/"+task.ID+"/audit", f.requester.ID, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	logs := decode[[]models.AuditLog](t, resp)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionApproved, logs[1].Action)
}

func TestApprovalApi_ErrorMapping(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)
	task := f.createTask(t, "LOW")

	resp := do(t, app, http.MethodGet, "/api/tasks/missing", f.admin.ID, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/tasks/"+task.ID+"/audit", f.outsider.ID, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/tasks/"+task.ID+"/snooze", f.approver.ID, `{"hours":0}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/tasks", f.requester.ID, `{"title":"x","approver_id":"nobody"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/tasks/"+task.ID, "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestApprovalApi_SnoozeExportAndDashboard(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)
	task := f.createTask(t, "HIGH")

	resp := do(t, app, http.MethodPost, "/api/tasks/"+task.ID+"/snooze", f.approver.ID, `{"hours":3}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snoozed := decode[models.ApprovalTask](t, resp)
	require.NotNil(t, snoozed.SnoozeUntil)

	resp = do(t, app, http.MethodGet, "/api/tasks/"+task.ID+"/audit/export", f.admin.ID, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "task-"+task.ID+"-audit.xlsx")

	resp = do(t, app, http.MethodGet, "/api/dashboard", f.approver.ID, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	board := decode[Dashboard](t, resp)
	require.Len(t, board.Assigned, 1)
	assert.Equal(t, []string{task.ID}, board.SLA[SLAGreen])
}
