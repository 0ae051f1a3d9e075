package room

import (
	"strings"
	"testing"

	"github.com/CALEBPOTZ/battleroyal/internal/app/store"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/errs"
)

func newTestState() *State {
	return NewState("", store.DefaultAppearance())
}

// registerOK registers a user and fails the test on any error.
func registerOK(t *testing.T, s *State, name string) {
	t.Helper()
	if _, _, _, cerr := s.Register(name); cerr != nil {
		t.Fatalf("Register(%q) failed: %v", name, cerr)
	}
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	s := newTestState()

	trimmed, isNew, becameAdmin, cerr := s.Register("  Alice  ")
	if cerr != nil {
		t.Fatalf("unexpected error: %v", cerr)
	}
	if trimmed != "Alice" {
		t.Fatalf("expected trimmed username Alice, got %q", trimmed)
	}
	if !isNew || !becameAdmin {
		t.Fatalf("expected new user and admin assignment, got isNew=%v becameAdmin=%v", isNew, becameAdmin)
	}
	if s.AdminName() != "Alice" {
		t.Fatalf("admin identity not set, got %q", s.AdminName())
	}

	_, _, becameAdmin, cerr = s.Register("Bob")
	if cerr != nil {
		t.Fatalf("unexpected error: %v", cerr)
	}
	if becameAdmin {
		t.Fatal("second user must not become admin")
	}
}

func TestRegisterEmptyUsername(t *testing.T) {
	s := newTestState()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, _, _, cerr := s.Register(name)
		if cerr == nil || cerr.Code != errs.ErrEmptyUsername {
			t.Fatalf("Register(%q): expected ErrEmptyUsername, got %v", name, cerr)
		}
	}
	if s.UserCount() != 0 {
		t.Fatalf("no records should exist, got %d", s.UserCount())
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	s := newTestState()
	registerOK(t, s, "Alice")

	if cerr := s.SubmitChoice("Alice", "Ryu"); cerr != nil {
		t.Fatalf("SubmitChoice failed: %v", cerr)
	}
	if cerr := s.SetAvatar("Alice", "http://example.com/a.png"); cerr != nil {
		t.Fatalf("SetAvatar failed: %v", cerr)
	}

	_, isNew, _, cerr := s.Register("Alice")
	if cerr != nil {
		t.Fatalf("re-registration failed: %v", cerr)
	}
	if isNew {
		t.Fatal("re-registration must not create a second record")
	}
	if s.UserCount() != 1 {
		t.Fatalf("expected 1 record, got %d", s.UserCount())
	}

	rec := s.Snapshot()["Alice"]
	if rec.Word != "Ryu" || rec.PfpURL != "http://example.com/a.png" {
		t.Fatalf("re-registration changed the record: %+v", rec)
	}
}

func TestSubmitChoiceValidation(t *testing.T) {
	s := newTestState()
	registerOK(t, s, "Alice")

	if cerr := s.SubmitChoice("Ghost", "Ryu"); cerr == nil || cerr.Code != errs.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", cerr)
	}
	if cerr := s.SubmitChoice("Alice", "   "); cerr == nil || cerr.Code != errs.ErrEmptyChoice {
		t.Fatalf("expected ErrEmptyChoice, got %v", cerr)
	}

	exactly := strings.Repeat("x", MaxChoiceLength)
	if cerr := s.SubmitChoice("Alice", exactly); cerr != nil {
		t.Fatalf("choice of exactly %d characters must succeed, got %v", MaxChoiceLength, cerr)
	}

	tooLong := strings.Repeat("x", MaxChoiceLength+1)
	if cerr := s.SubmitChoice("Alice", tooLong); cerr == nil || cerr.Code != errs.ErrChoiceTooLong {
		t.Fatalf("expected ErrChoiceTooLong, got %v", cerr)
	}

	if rec := s.Snapshot()["Alice"]; rec.Word != exactly {
		t.Fatal("rejected choice must not overwrite the previous one")
	}
}

func TestSetAvatarFallsBackToDefault(t *testing.T) {
	s := newTestState()
	registerOK(t, s, "Alice")

	if cerr := s.SetAvatar("Alice", "  "); cerr != nil {
		t.Fatalf("SetAvatar failed: %v", cerr)
	}
	if rec := s.Snapshot()["Alice"]; rec.PfpURL != store.DefaultAvatarURL {
		t.Fatalf("expected default avatar, got %q", rec.PfpURL)
	}

	if cerr := s.SetAvatar("Ghost", "x"); cerr == nil || cerr.Code != errs.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", cerr)
	}
}

func TestTransferAdmin(t *testing.T) {
	s := newTestState()
	registerOK(t, s, "Alice")
	registerOK(t, s, "Bob")

	if cerr := s.TransferAdmin("Bob", "Alice"); cerr == nil || cerr.Code != errs.ErrNotAdmin {
		t.Fatalf("non-admin transfer: expected ErrNotAdmin, got %v", cerr)
	}
	if cerr := s.TransferAdmin("Alice", "Ghost"); cerr == nil || cerr.Code != errs.ErrTargetNotFound {
		t.Fatalf("expected ErrTargetNotFound, got %v", cerr)
	}
	if cerr := s.TransferAdmin("Alice", "Alice"); cerr == nil || cerr.Code != errs.ErrSelfTransfer {
		t.Fatalf("expected ErrSelfTransfer, got %v", cerr)
	}
	if s.AdminName() != "Alice" {
		t.Fatal("failed transfers must not change the admin identity")
	}

	if cerr := s.TransferAdmin("Alice", "Bob"); cerr != nil {
		t.Fatalf("transfer failed: %v", cerr)
	}
	if s.AdminName() != "Bob" {
		t.Fatalf("expected Bob as admin, got %q", s.AdminName())
	}

	s.SyncAdminFlags()
	snapshot := s.Snapshot()
	if !snapshot["Bob"].IsAdmin || snapshot["Alice"].IsAdmin {
		t.Fatalf("flags not resynced after transfer: %+v", snapshot)
	}
}

func TestRemove(t *testing.T) {
	s := newTestState()
	registerOK(t, s, "Alice")
	registerOK(t, s, "Bob")

	if _, cerr := s.Remove("Ghost"); cerr == nil || cerr.Code != errs.ErrTargetNotFound {
		t.Fatalf("expected ErrTargetNotFound, got %v", cerr)
	}

	wasAdmin, cerr := s.Remove("Bob")
	if cerr != nil {
		t.Fatalf("removal failed: %v", cerr)
	}
	if wasAdmin {
		t.Fatal("Bob never held admin rights")
	}
	if s.HasUser("Bob") {
		t.Fatal("Bob should be gone")
	}
}

func TestRemoveAdminClearsIdentity(t *testing.T) {
	s := newTestState()
	registerOK(t, s, "Alice")
	registerOK(t, s, "Bob")
	s.SyncAdminFlags()

	wasAdmin, cerr := s.Remove("Alice")
	if cerr != nil {
		t.Fatalf("removal failed: %v", cerr)
	}
	if !wasAdmin {
		t.Fatal("Alice held admin rights")
	}
	if s.AdminName() != "" {
		t.Fatalf("admin identity must be unassigned, got %q", s.AdminName())
	}
}

func TestRemoveSoleAdminRefused(t *testing.T) {
	s := newTestState()
	registerOK(t, s, "Alice")
	s.SyncAdminFlags()

	if _, cerr := s.Remove("Alice"); cerr == nil || cerr.Code != errs.ErrSoleUserRemoval {
		t.Fatalf("expected ErrSoleUserRemoval, got %v", cerr)
	}
	if s.AdminName() != "Alice" || s.UserCount() != 1 {
		t.Fatal("guarded removal must leave state untouched")
	}
}

func TestDropUserClearsAdminOnDeparture(t *testing.T) {
	s := newTestState()
	registerOK(t, s, "Alice")
	registerOK(t, s, "Bob")

	if wasAdmin := s.DropUser("Bob"); wasAdmin {
		t.Fatal("Bob was not the admin")
	}
	if wasAdmin := s.DropUser("Alice"); !wasAdmin {
		t.Fatal("dropping the admin must report wasAdmin")
	}
	if s.AdminName() != "" {
		t.Fatalf("admin identity must be cleared, got %q", s.AdminName())
	}

	// The departed admin registers again: the first-user rule applies as if new.
	_, _, becameAdmin, cerr := s.Register("Alice")
	if cerr != nil {
		t.Fatalf("re-registration failed: %v", cerr)
	}
	if !becameAdmin {
		t.Fatal("with no admin assigned, the returning user claims admin via the first-user rule")
	}
}

func TestSyncAdminFlagsSingleAdminInvariant(t *testing.T) {
	s := NewState("Carol", store.DefaultAppearance())
	registerOK(t, s, "Alice")
	registerOK(t, s, "Bob")
	registerOK(t, s, "Carol")

	s.SyncAdminFlags()
	admins := 0
	for username, rec := range s.Snapshot() {
		if rec.IsAdmin {
			admins++
			if username != s.AdminName() {
				t.Fatalf("flagged admin %q does not match identity %q", username, s.AdminName())
			}
		}
	}
	if admins != 1 {
		t.Fatalf("expected exactly one admin flag, got %d", admins)
	}
}

func TestChoicesText(t *testing.T) {
	s := newTestState()

	if got := s.ChoicesText(); got != NoChoicesText {
		t.Fatalf("empty registry: got %q", got)
	}

	registerOK(t, s, "Alice")
	registerOK(t, s, "Bob")
	if got := s.ChoicesText(); got != NoChoicesText {
		t.Fatalf("no submitted choices: got %q", got)
	}

	if cerr := s.SubmitChoice("Alice", "Apple"); cerr != nil {
		t.Fatalf("SubmitChoice failed: %v", cerr)
	}
	if cerr := s.SubmitChoice("Bob", "Banana"); cerr != nil {
		t.Fatalf("SubmitChoice failed: %v", cerr)
	}

	if got := s.ChoicesText(); got != "Apple vs Banana" {
		t.Fatalf("expected %q, got %q", "Apple vs Banana", got)
	}
}

func TestSetAppearanceFillsDefaults(t *testing.T) {
	s := newTestState()

	if cerr := s.SetAppearance(store.Appearance{BgColor: "#000000", LogoURL: "http://x/logo.png"}); cerr != nil {
		t.Fatalf("SetAppearance failed: %v", cerr)
	}
	got := s.Appearance()
	if got.BgColor != "#000000" || got.BgImageURL != "" || got.LogoURL != "http://x/logo.png" {
		t.Fatalf("unexpected appearance: %+v", got)
	}

	if cerr := s.SetAppearance(store.Appearance{}); cerr != nil {
		t.Fatalf("SetAppearance failed: %v", cerr)
	}
	got = s.Appearance()
	if got.BgColor != store.DefaultBgColor || got.LogoURL != store.DefaultLogoURL {
		t.Fatalf("empty fields must fall back to defaults: %+v", got)
	}

	huge := strings.Repeat("a", 5000)
	if cerr := s.SetAppearance(store.Appearance{BgImageURL: huge}); cerr == nil || cerr.Code != errs.ErrInvalidAppearance {
		t.Fatalf("expected ErrInvalidAppearance, got %v", cerr)
	}
}
