/*
Package room contains the core logic for the real-time voting room: the user
registry, the single-admin rules, client connections, and state broadcasting.

This file defines the wire protocol: frame envelope, message type names, and
the typed payloads exchanged with clients.
*/
package room

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/CALEBPOTZ/battleroyal/internal/app/store"
)

// MessageType identifies the kind of protocol frame.
type MessageType string

// Client-to-server message types.
const (
	TypeRegisterUser     MessageType = "registerUser"
	TypeSubmitChoice     MessageType = "submitChoice"
	TypeUpdateProfile    MessageType = "updateProfile"
	TypeSetAdmin         MessageType = "setAdmin"
	TypeRemoveUser       MessageType = "removeUser"
	TypeUpdateAppearance MessageType = "updateAppearance"
)

// Server-to-client message types.
const (
	TypeInitialState            MessageType = "initialState"
	TypeRegistrationSuccess     MessageType = "registrationSuccess"
	TypeRegistrationError       MessageType = "registrationError"
	TypeUpdateChoices           MessageType = "updateChoices"
	TypeApplyAppearance         MessageType = "applyAppearance"
	TypeChoiceError             MessageType = "choiceError"
	TypeProfileUpdateSuccess    MessageType = "profileUpdateSuccess"
	TypeProfileUpdateError      MessageType = "profileUpdateError"
	TypeAdminActionSuccess      MessageType = "adminActionSuccess"
	TypeAdminActionError        MessageType = "adminActionError"
	TypeAppearanceUpdateSuccess MessageType = "appearanceUpdateSuccess"
	TypeAppearanceUpdateError   MessageType = "appearanceUpdateError"
)

// Message is the frame envelope for every protocol message, in both directions.
// Server frames carry a generated ID and unix-millis timestamp.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds a server frame of the given type around the marshaled payload.
func NewMessage(msgType MessageType, payload any) (Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   payloadBytes,
	}, nil
}

// RegisterPayload carries a registration request.
type RegisterPayload struct {
	Username string `json:"username"`
}

// ChoicePayload carries a submitted character choice.
type ChoicePayload struct {
	Word string `json:"word"`
}

// ProfilePayload carries a profile picture update.
type ProfilePayload struct {
	PfpURL string `json:"pfpUrl"`
}

// AdminTargetPayload names the target of a setAdmin or removeUser action.
type AdminTargetPayload struct {
	Username string `json:"username"`
}

// RegistrationSuccessPayload acknowledges a successful registration. InitialData
// carries the full registry snapshot so the client can render immediately.
type RegistrationSuccessPayload struct {
	Username    string                `json:"username"`
	IsAdmin     bool                  `json:"isAdmin"`
	InitialData map[string]UserRecord `json:"initialData"`
}

// InitialStatePayload is sent once to every freshly opened connection so the
// client never observes a partial view.
type InitialStatePayload struct {
	Users      map[string]UserRecord `json:"users"`
	Appearance store.Appearance      `json:"appearance"`
}

// NoticePayload carries a human-readable success acknowledgement.
type NoticePayload struct {
	Message string `json:"message"`
}

// ErrorPayload carries a named error acknowledgement to the requesting connection.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
