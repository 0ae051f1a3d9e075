/*
Package room contains the core logic for the real-time voting room.

This file defines State, the single-writer in-memory registry of user records
together with the admin identity and the shared appearance settings. All
mutation happens from the Room's event loop; State itself carries no locking.
*/
package room

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/CALEBPOTZ/battleroyal/internal/app/store"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/errs"
)

// MaxChoiceLength is the maximum allowed length of a submitted character name.
const MaxChoiceLength = 100

// UserRecord is one registered participant. IsAdmin is derived from the
// current admin identity; SyncAdminFlags recomputes it before every snapshot.
type UserRecord struct {
	Word    string `json:"word"`
	PfpURL  string `json:"pfpUrl"`
	IsAdmin bool   `json:"isAdmin"`
}

// State owns the registry of user records, the admin identity, and the
// appearance settings. The admin identity is empty when unassigned.
type State struct {
	users      map[string]*UserRecord
	adminName  string
	appearance store.Appearance
}

// NewState builds a State seeded with a persisted admin identity and
// appearance, typically the result of store.Load at boot. The persisted admin
// name only takes effect again once that user re-registers; until then no
// record carries the flag.
func NewState(adminName string, appearance store.Appearance) *State {
	return &State{
		users:      make(map[string]*UserRecord),
		adminName:  adminName,
		appearance: appearance.Normalized(),
	}
}

// AdminName returns the username currently holding admin rights, or "" when unassigned.
func (s *State) AdminName() string {
	return s.adminName
}

// Appearance returns the current shared appearance settings.
func (s *State) Appearance() store.Appearance {
	return s.appearance
}

// UserCount returns the number of registered users.
func (s *State) UserCount() int {
	return len(s.users)
}

// HasUser reports whether the given username is registered.
func (s *State) HasUser(username string) bool {
	_, ok := s.users[username]
	return ok
}

// Register creates a user record for the trimmed username, or re-associates an
// existing one on reconnect. A brand-new user claims admin when none is
// assigned (first-user-becomes-admin). becameAdmin tells the caller to persist
// the new admin identity.
func (s *State) Register(username string) (trimmed string, isNew bool, becameAdmin bool, cerr *errs.CustomError) {
	trimmed = strings.TrimSpace(username)
	if trimmed == "" {
		return "", false, false, errs.NewError(errs.ErrEmptyUsername)
	}

	if rec, ok := s.users[trimmed]; ok {
		rec.IsAdmin = trimmed == s.adminName
		return trimmed, false, false, nil
	}

	if s.adminName == "" {
		s.adminName = trimmed
		becameAdmin = true
	}

	s.users[trimmed] = &UserRecord{
		Word:    "",
		PfpURL:  store.DefaultAvatarURL,
		IsAdmin: becameAdmin,
	}

	return trimmed, true, becameAdmin, nil
}

// SubmitChoice overwrites the user's choice. The caller must be registered,
// the trimmed word non-empty and at most MaxChoiceLength characters.
func (s *State) SubmitChoice(username, word string) *errs.CustomError {
	rec, ok := s.users[username]
	if !ok {
		return errs.NewError(errs.ErrUserNotFound)
	}

	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return errs.NewError(errs.ErrEmptyChoice)
	}
	if utf8.RuneCountInString(trimmed) > MaxChoiceLength {
		return errs.NewError(errs.ErrChoiceTooLong, MaxChoiceLength)
	}

	rec.Word = trimmed
	return nil
}

// SetAvatar updates the user's profile picture URL, falling back to the
// default avatar when the trimmed URL is empty.
func (s *State) SetAvatar(username, url string) *errs.CustomError {
	rec, ok := s.users[username]
	if !ok {
		return errs.NewError(errs.ErrUserNotFound)
	}

	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		trimmed = store.DefaultAvatarURL
	}

	rec.PfpURL = trimmed
	return nil
}

// TransferAdmin moves admin rights from requester to target. The requester
// must be the current admin, the target must exist, and the target must not
// already hold admin rights.
func (s *State) TransferAdmin(requester, target string) *errs.CustomError {
	if requester == "" || requester != s.adminName {
		return errs.NewError(errs.ErrNotAdmin)
	}

	rec, ok := s.users[target]
	if target == "" || !ok {
		return errs.NewError(errs.ErrTargetNotFound)
	}

	if target == requester {
		return errs.NewError(errs.ErrSelfTransfer)
	}

	if rec.IsAdmin {
		return errs.NewError(errs.ErrAlreadyAdmin, target)
	}

	s.adminName = target
	return nil
}

// Remove deletes the target record. Removing the admin while they are the
// only registered user is refused so the removal path can never leave the
// room empty with no admin to bootstrap from. wasAdmin reports whether the
// removed user held admin rights, in which case the admin identity has been
// cleared and must be persisted. The requester-side checks (admin privilege,
// self-removal) belong to the connection handler.
func (s *State) Remove(target string) (wasAdmin bool, cerr *errs.CustomError) {
	rec, ok := s.users[target]
	if target == "" || !ok {
		return false, errs.NewError(errs.ErrTargetNotFound)
	}

	wasAdmin = target == s.adminName || rec.IsAdmin
	if wasAdmin && len(s.users) <= 1 {
		return false, errs.NewError(errs.ErrSoleUserRemoval)
	}

	delete(s.users, target)
	if wasAdmin {
		s.adminName = ""
	}

	return wasAdmin, nil
}

// DropUser deletes a record after its last live connection disconnected.
// Admin status is tied to presence: if the departing user was the admin, the
// identity is cleared, and reconnecting later does not restore it.
func (s *State) DropUser(username string) (wasAdmin bool) {
	if _, ok := s.users[username]; !ok {
		return false
	}

	delete(s.users, username)

	if username == s.adminName {
		s.adminName = ""
		return true
	}
	return false
}

// SetAppearance overwrites the shared appearance settings, filling empty
// fields with defaults. Oversized values are rejected outright.
func (s *State) SetAppearance(a store.Appearance) *errs.CustomError {
	const maxFieldLen = 2048
	if len(a.BgColor) > maxFieldLen || len(a.BgImageURL) > maxFieldLen || len(a.LogoURL) > maxFieldLen {
		return errs.NewError(errs.ErrInvalidAppearance)
	}

	s.appearance = a.Normalized()
	return nil
}

// SyncAdminFlags overwrites every record's IsAdmin to match the current admin
// identity. Called immediately before every snapshot instead of keeping the
// flag continuously consistent through each mutation path.
func (s *State) SyncAdminFlags() {
	for username, rec := range s.users {
		rec.IsAdmin = username == s.adminName
	}
}

// Snapshot returns a read-only copy of the registry for broadcasting.
func (s *State) Snapshot() map[string]UserRecord {
	snapshot := make(map[string]UserRecord, len(s.users))
	for username, rec := range s.users {
		snapshot[username] = *rec
	}
	return snapshot
}

// NoChoicesText is returned by ChoicesText while nobody has submitted a choice.
const NoChoicesText = "No characters chosen yet!"

// ChoicesText joins all submitted choices with " vs ", in alphabetical
// username order for a stable result.
func (s *State) ChoicesText() string {
	usernames := make([]string, 0, len(s.users))
	for username := range s.users {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	words := make([]string, 0, len(usernames))
	for _, username := range usernames {
		if word := s.users[username].Word; word != "" {
			words = append(words, word)
		}
	}

	if len(words) == 0 {
		return NoChoicesText
	}
	return strings.Join(words, " vs ")
}
