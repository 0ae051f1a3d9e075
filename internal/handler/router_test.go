package handler

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/CALEBPOTZ/battleroyal/internal/app/room"
	"github.com/CALEBPOTZ/battleroyal/internal/app/store"
	"github.com/CALEBPOTZ/battleroyal/internal/configs"
)

func newTestDeps(t *testing.T) (*AppDeps, *room.State) {
	t.Helper()

	st := store.New(filepath.Join(t.TempDir(), "room_config.json"))
	state := room.NewState("", store.DefaultAppearance())

	return &AppDeps{
		Room: room.NewRoom(state, st),
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        3000,
			StaticDir:   "",
		},
	}, state
}

func getBody(t *testing.T, deps *AppDeps, path string) (int, string) {
	t.Helper()

	router := Router(deps)
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return rec.Code, string(body)
}

func TestVersusEndpointEmpty(t *testing.T) {
	deps, _ := newTestDeps(t)

	status, body := getBody(t, deps, "/vs")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if body != room.NoChoicesText {
		t.Fatalf("expected %q, got %q", room.NoChoicesText, body)
	}
}

func TestVersusEndpointJoinsChoices(t *testing.T) {
	deps, state := newTestDeps(t)

	for _, name := range []string{"Alice", "Bob"} {
		if _, _, _, cerr := state.Register(name); cerr != nil {
			t.Fatalf("Register(%q) failed: %v", name, cerr)
		}
	}
	if cerr := state.SubmitChoice("Alice", "Apple"); cerr != nil {
		t.Fatalf("SubmitChoice failed: %v", cerr)
	}
	if cerr := state.SubmitChoice("Bob", "Banana"); cerr != nil {
		t.Fatalf("SubmitChoice failed: %v", cerr)
	}

	_, body := getBody(t, deps, "/vs")
	if body != "Apple vs Banana" {
		t.Fatalf("expected %q, got %q", "Apple vs Banana", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	deps, _ := newTestDeps(t)

	status, body := getBody(t, deps, "/health")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if body == "" || body[0] != '{' {
		t.Fatalf("expected JSON body, got %q", body)
	}
}
