package api

import (
	"net/http"
	"testing"

	"github.com/erazemk/lostfound/internal/model"
)

func logFound(t *testing.T, env *testEnv, body map[string]any) model.FoundItem {
	t.Helper()
	var item model.FoundItem
	if code := do(t, "POST", env.server.URL+"/api/found", env.guard, body, &item); code != http.StatusCreated {
		t.Fatalf("expected 201 logging found item, got %d", code)
	}
	return item
}

func TestFoundAPIFlow(t *testing.T) {
	env := setupTestServer(t)

	item := logFound(t, env, map[string]any{
		"item_name": "Blue Backpack",
		"category":  model.CategoryBags,
		"location":  "Gym",
	})
	if item.Status != model.FoundStatusPending {
		t.Errorf("expected pending, got %q", item.Status)
	}

	url := env.server.URL + "/api/found/" + itoa(item.ID)
	if code := do(t, "GET", url, env.ana, nil, nil); code != http.StatusOK {
		t.Errorf("expected students to see pending items, got %d", code)
	}

	if code := do(t, "PUT", url+"/status", env.ana, map[string]string{"status": "claimed"}, nil); code != http.StatusForbidden {
		t.Errorf("expected 403 for student claiming, got %d", code)
	}
	if code := do(t, "PUT", url+"/status", env.guard, map[string]string{"status": "returned"}, nil); code != http.StatusConflict {
		t.Errorf("expected 409 for pending -> returned, got %d", code)
	}

	var updated model.FoundItem
	if code := do(t, "PUT", url+"/status", env.guard, map[string]string{"status": "claimed"}, &updated); code != http.StatusOK {
		t.Fatalf("expected 200 claiming, got %d", code)
	}
	if updated.Status != model.FoundStatusClaimed {
		t.Errorf("expected claimed, got %q", updated.Status)
	}

	if code := do(t, "GET", url, env.ana, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected claimed item hidden from students, got %d", code)
	}
	if code := do(t, "GET", url+"/matches", env.guard, nil, nil); code != http.StatusOK {
		t.Errorf("expected 200 listing matches, got %d", code)
	}
}

func TestFoundListAndSearch(t *testing.T) {
	env := setupTestServer(t)

	logFound(t, env, map[string]any{"item_name": "iPhone 13", "category": model.CategoryElectronics})
	logFound(t, env, map[string]any{"item_name": "Umbrella", "description": "black, folding", "category": model.CategoryOther})
	claimed := logFound(t, env, map[string]any{"item_name": "iPhone 12", "category": model.CategoryElectronics})
	do(t, "PUT", env.server.URL+"/api/found/"+itoa(claimed.ID)+"/status", env.guard, map[string]string{"status": "claimed"}, nil)

	var items []model.FoundItem
	do(t, "GET", env.server.URL+"/api/found", env.ana, nil, &items)
	if len(items) != 2 {
		t.Errorf("expected students to see 2 pending items, got %d", len(items))
	}

	do(t, "GET", env.server.URL+"/api/found?status=claimed", env.ana, nil, &items)
	if len(items) != 2 {
		t.Errorf("expected status filter to be ignored for students, got %d", len(items))
	}

	do(t, "GET", env.server.URL+"/api/found", env.guard, nil, &items)
	if len(items) != 3 {
		t.Errorf("expected security to see all 3 items, got %d", len(items))
	}

	do(t, "GET", env.server.URL+"/api/found?q=iphne", env.guard, nil, &items)
	if len(items) != 2 {
		t.Errorf("expected 2 fuzzy hits for 'iphne', got %d", len(items))
	}

	do(t, "GET", env.server.URL+"/api/found?q=FOLDING", env.ana, nil, &items)
	if len(items) != 1 || items[0].ItemName != "Umbrella" {
		t.Errorf("expected description search to find the umbrella, got %v", items)
	}
}

func TestFoundCreateValidation(t *testing.T) {
	env := setupTestServer(t)

	code := do(t, "POST", env.server.URL+"/api/found", env.guard, map[string]any{
		"item_name": "Thing", "category": "Spaceships",
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", code)
	}
}
