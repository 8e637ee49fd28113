package api

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func createReport(t *testing.T, env *testEnv, token string, body map[string]any) model.LostReport {
	t.Helper()
	var report model.LostReport
	if code := do(t, "POST", env.server.URL+"/api/reports", token, body, &report); code != http.StatusCreated {
		t.Fatalf("expected 201 creating report, got %d", code)
	}
	return report
}

func TestCreateReportQueuesMatching(t *testing.T) {
	env := setupTestServer(t)

	report := createReport(t, env, env.ana, map[string]any{
		"item_name":   "  iPhone 13 ",
		"description": "black case",
		"category":    model.CategoryElectronics,
		"location":    "Library",
	})
	if report.ItemName != "iPhone 13" || report.Status != model.ReportStatusActive || report.StudentID != env.anaID {
		t.Errorf("unexpected report %+v", report)
	}

	queued := env.dispatcher.queued()
	if len(queued) != 1 || queued[0].ID != report.ID {
		t.Errorf("expected report %d to be queued, got %v", report.ID, queued)
	}
}

func TestCreateReportSurvivesFullQueue(t *testing.T) {
	env := setupTestServer(t)
	env.dispatcher.err = matching.ErrQueueFull

	createReport(t, env, env.ana, map[string]any{"item_name": "Keys", "category": model.CategoryKeys})
}

func TestCreateReportValidation(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"category": model.CategoryKeys}},
		{"blank name", map[string]any{"item_name": "   ", "category": model.CategoryKeys}},
		{"unknown category", map[string]any{"item_name": "Keys", "category": "Vehicles"}},
		{"future date", map[string]any{"item_name": "Keys", "category": model.CategoryKeys,
			"reported_at": time.Now().Add(48 * time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := do(t, "POST", env.server.URL+"/api/reports", env.ana, tt.body, nil); code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", code)
			}
		})
	}
	if n := len(env.dispatcher.queued()); n != 0 {
		t.Errorf("expected nothing queued, got %d", n)
	}
}

func TestReportVisibility(t *testing.T) {
	env := setupTestServer(t)
	report := createReport(t, env, env.ana, map[string]any{"item_name": "Wallet", "category": model.CategoryWallets})
	createReport(t, env, env.bor, map[string]any{"item_name": "Scarf", "category": model.CategoryClothing})

	url := env.server.URL + "/api/reports/" + itoa(report.ID)
	if code := do(t, "GET", url, env.bor, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for another student's report, got %d", code)
	}
	if code := do(t, "GET", url, env.guard, nil, nil); code != http.StatusOK {
		t.Errorf("expected 200 for security, got %d", code)
	}

	var own []model.LostReport
	do(t, "GET", env.server.URL+"/api/reports", env.ana, nil, &own)
	if len(own) != 1 || own[0].ID != report.ID {
		t.Errorf("expected ana to see only her report, got %v", own)
	}

	var all []model.LostReport
	do(t, "GET", env.server.URL+"/api/reports", env.guard, nil, &all)
	if len(all) != 2 {
		t.Errorf("expected security to see 2 reports, got %d", len(all))
	}

	var filtered []model.LostReport
	do(t, "GET", env.server.URL+"/api/reports?student_id="+itoa(env.borID), env.guard, nil, &filtered)
	if len(filtered) != 1 {
		t.Errorf("expected 1 report for bor, got %d", len(filtered))
	}
}

func TestReportStatusTransitions(t *testing.T) {
	env := setupTestServer(t)
	report := createReport(t, env, env.ana, map[string]any{"item_name": "Laptop", "category": model.CategoryElectronics})
	url := env.server.URL + "/api/reports/" + itoa(report.ID) + "/status"

	if code := do(t, "PUT", url, env.ana, map[string]string{"status": "closed"}, nil); code != http.StatusForbidden {
		t.Errorf("expected 403 for student closing, got %d", code)
	}
	if code := do(t, "PUT", url, env.guard, map[string]string{"status": "cancelled"}, nil); code != http.StatusForbidden {
		t.Errorf("expected 403 for security cancelling, got %d", code)
	}
	if code := do(t, "PUT", url, env.ana, map[string]string{"status": "lost"}, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", code)
	}

	var updated model.LostReport
	if code := do(t, "PUT", url, env.ana, map[string]string{"status": "cancelled"}, &updated); code != http.StatusOK {
		t.Fatalf("expected 200 cancelling, got %d", code)
	}
	if updated.Status != model.ReportStatusCancelled {
		t.Errorf("expected cancelled, got %q", updated.Status)
	}

	if code := do(t, "PUT", url, env.guard, map[string]string{"status": "closed"}, nil); code != http.StatusConflict {
		t.Errorf("expected 409 closing a cancelled report, got %d", code)
	}

	if code := do(t, "PUT", url, env.ana, map[string]string{"status": "active"}, nil); code != http.StatusOK {
		t.Fatalf("expected 200 reactivating, got %d", code)
	}
	if n := len(env.dispatcher.queued()); n != 2 {
		t.Errorf("expected reactivation to queue a second run, got %d runs", n)
	}

	if code := do(t, "PUT", url, env.guard, map[string]string{"status": "closed"}, nil); code != http.StatusOK {
		t.Errorf("expected 200 closing, got %d", code)
	}
}

func TestRematchRecordsMatchesAndNotifies(t *testing.T) {
	env := setupTestServer(t)

	code := do(t, "POST", env.server.URL+"/api/found", env.guard, map[string]any{
		"item_name":   "iPhone 13",
		"description": "black case",
		"category":    model.CategoryElectronics,
		"found_at":    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}, nil)
	if code != http.StatusCreated {
		t.Fatalf("expected 201 logging found item, got %d", code)
	}

	report := createReport(t, env, env.ana, map[string]any{
		"item_name":   "iPhone 13",
		"description": "black case",
		"category":    model.CategoryElectronics,
		"reported_at": time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	url := env.server.URL + "/api/reports/" + itoa(report.ID)

	var res matching.Result
	for range 2 {
		if code := do(t, "POST", url+"/rematch", env.guard, nil, &res); code != http.StatusOK {
			t.Fatalf("expected 200 from rematch, got %d", code)
		}
	}
	if res.Matches != 1 || res.Notified != 1 || res.RunID == "" {
		t.Errorf("unexpected result %+v", res)
	}

	var matches []model.Match
	do(t, "GET", url+"/matches", env.ana, nil, &matches)
	if len(matches) != 1 || matches[0].Score != 100 {
		t.Fatalf("expected one match scoring 100, got %v", matches)
	}

	var notes []model.Notification
	do(t, "GET", env.server.URL+"/api/notifications?unread=true", env.ana, nil, &notes)
	if len(notes) == 0 || notes[0].Message != `Possible match found for your "iPhone 13" (score 100%)` {
		t.Fatalf("unexpected notifications %v", notes)
	}

	readURL := env.server.URL + "/api/notifications/" + itoa(notes[0].ID) + "/read"
	if code := do(t, "PUT", readURL, env.bor, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 marking someone else's notification, got %d", code)
	}
	if code := do(t, "PUT", readURL, env.ana, nil, nil); code != http.StatusOK {
		t.Errorf("expected 200 marking own notification, got %d", code)
	}
}

func TestRematchInactiveReport(t *testing.T) {
	env := setupTestServer(t)
	report := createReport(t, env, env.ana, map[string]any{"item_name": "Keys", "category": model.CategoryKeys})
	url := env.server.URL + "/api/reports/" + itoa(report.ID)

	do(t, "PUT", url+"/status", env.ana, map[string]string{"status": "cancelled"}, nil)
	if code := do(t, "POST", url+"/rematch", env.guard, nil, nil); code != http.StatusConflict {
		t.Errorf("expected 409 rematching a cancelled report, got %d", code)
	}
}

type failingRunner struct{}

func (failingRunner) Run(ctx context.Context, report model.LostReport) (matching.Result, error) {
	return matching.Result{}, errors.New("boom")
}

func TestRematchFailure(t *testing.T) {
	env := setupTestServerWithOptions(t, Options{Runner: failingRunner{}})
	report := createReport(t, env, env.ana, map[string]any{"item_name": "Keys", "category": model.CategoryKeys})

	url := env.server.URL + "/api/reports/" + itoa(report.ID) + "/rematch"
	if code := do(t, "POST", url, env.admin, nil, nil); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
}

func pngUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := range 40 {
		for y := range 20 {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("image", "photo.png")
	png.Encode(fw, img)
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestReportImageUpload(t *testing.T) {
	env := setupTestServer(t)
	report := createReport(t, env, env.ana, map[string]any{"item_name": "Bag", "category": model.CategoryBags})
	url := env.server.URL + "/api/reports/" + itoa(report.ID) + "/image"

	body, contentType := pngUpload(t)
	req, _ := http.NewRequest("PUT", url, body)
	req.Header.Set("Authorization", "Bearer "+env.ana)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from upload, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest("GET", url, nil)
	req.Header.Set("Authorization", "Bearer "+env.ana)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("expected stored JPEG, got %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	req, _ = http.NewRequest("GET", url, nil)
	req.Header.Set("Authorization", "Bearer "+env.bor)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for another student, got %d", resp.StatusCode)
	}
}
