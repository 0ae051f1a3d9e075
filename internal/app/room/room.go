/*
Package room contains the core logic for the real-time voting room.

This file defines the Room struct, the central hub for the single voting
session. Its Run loop is the only writer of the voting State: connection
registration, disconnects, and every inbound protocol event are serialized
through it, so each handler runs to completion before the next event.
*/
package room

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/CALEBPOTZ/battleroyal/internal/app/store"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/errs"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/logx"
)

const inboundChannelBuffer = 256

// inboundEvent is one decoded client frame queued for the Run loop.
type inboundEvent struct {
	client  *Client
	msgType MessageType
	payload json.RawMessage
}

// Room is the hub for the voting session. It owns the State and the set of
// live connections.
type Room struct {
	// state holds the user registry, admin identity, and appearance settings.
	state *State

	// store persists admin identity and appearance across restarts.
	store *store.Store

	// clients is the set of live connections. A username may appear on
	// several clients (multiple tabs), or on none before registration.
	clients map[*Client]struct{}

	// register queues freshly upgraded connections.
	register chan *Client

	// unregister queues disconnected connections for cleanup.
	unregister chan *Client

	// inbound queues decoded client frames for the Run loop.
	inbound chan inboundEvent

	// stopChan signals the Run loop to terminate.
	stopChan chan struct{}

	// mu guards state and clients for readers outside the Run loop (the /vs
	// endpoint); the Run loop is the only writer.
	mu sync.RWMutex

	// structured logger with room context.
	logger zerolog.Logger
}

// NewRoom creates a Room around the given state and config store.
func NewRoom(state *State, st *store.Store) *Room {
	roomLogger := logx.Logger().With().Str("component", "room").Logger()

	return &Room{
		state:      state,
		store:      st,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent, inboundChannelBuffer),
		stopChan:   make(chan struct{}),
		logger:     roomLogger,
	}
}

// Stop signals the Run loop to terminate.
func (r *Room) Stop() {
	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}
}

// Run is the main event loop. It handles connection lifecycle and all
// protocol events until Stop is called.
func (r *Room) Run() {
	defer func() {
		r.mu.Lock()
		for client := range r.clients {
			client.closeSend()
		}
		r.clients = make(map[*Client]struct{})
		r.mu.Unlock()

		r.logger.Info().Msg("Room Run loop finished.")
	}()

	for {
		select {
		case client := <-r.register:
			r.handleConnect(client)

		case client := <-r.unregister:
			r.handleDisconnect(client)

		case ev := <-r.inbound:
			r.dispatch(ev)

		case <-r.stopChan:
			r.logger.Info().Msg("Room stop initiated.")
			return
		}
	}
}

// RegisterClient queues a freshly upgraded connection for the Run loop.
func (r *Room) RegisterClient(client *Client) {
	select {
	case r.register <- client:
	case <-r.stopChan:
		client.closeSend()
	}
}

// unregisterClient queues a disconnected connection for cleanup.
func (r *Room) unregisterClient(client *Client) {
	select {
	case r.unregister <- client:
	case <-r.stopChan:
	}
}

// enqueueInbound queues a decoded frame for the Run loop.
func (r *Room) enqueueInbound(ev inboundEvent) {
	select {
	case r.inbound <- ev:
	case <-r.stopChan:
	}
}

// ChoicesText returns the joined choices string served by the /vs endpoint.
// Safe to call from any goroutine.
func (r *Room) ChoicesText() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.ChoicesText()
}

// handleConnect adds the connection to the live set and sends it the full
// current state so a fresh client never observes a partial view.
func (r *Room) handleConnect(client *Client) {
	r.mu.Lock()
	r.clients[client] = struct{}{}
	r.state.SyncAdminFlags()
	payload := InitialStatePayload{
		Users:      r.state.Snapshot(),
		Appearance: r.state.Appearance(),
	}
	total := len(r.clients)
	r.mu.Unlock()

	r.logger.Info().Int("total_connections", total).Msg("Client connected.")

	if err := client.sendEvent(TypeInitialState, payload); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to send initial state to new client.")
	}
}

// handleDisconnect removes a connection. When it was the last live connection
// for its username, the user record is dropped and, if that user was the
// admin, the admin identity is cleared and persisted.
func (r *Room) handleDisconnect(client *Client) {
	r.mu.Lock()

	if _, ok := r.clients[client]; !ok {
		// Already removed, e.g. kicked by an admin action.
		r.mu.Unlock()
		return
	}

	delete(r.clients, client)
	client.closeSend()

	username := client.username
	if username == "" || r.connectionCountLocked(username) > 0 {
		r.mu.Unlock()
		return
	}

	wasAdmin := r.state.DropUser(username)
	r.mu.Unlock()

	r.logger.Info().
		Str("username", username).
		Bool("was_admin", wasAdmin).
		Msg("Last connection for user closed. Record removed.")

	if wasAdmin {
		r.persist()
	}
	r.broadcastState(false)
}

// connectionCountLocked counts live connections for a username. Caller holds r.mu.
func (r *Room) connectionCountLocked(username string) int {
	count := 0
	for c := range r.clients {
		if c.username == username {
			count++
		}
	}
	return count
}

// dispatch routes one decoded frame to its handler.
func (r *Room) dispatch(ev inboundEvent) {
	switch ev.msgType {
	case TypeRegisterUser:
		r.handleRegisterUser(ev.client, ev.payload)

	case TypeSubmitChoice:
		r.handleSubmitChoice(ev.client, ev.payload)

	case TypeUpdateProfile:
		r.handleUpdateProfile(ev.client, ev.payload)

	case TypeSetAdmin:
		r.handleSetAdmin(ev.client, ev.payload)

	case TypeRemoveUser:
		r.handleRemoveUser(ev.client, ev.payload)

	case TypeUpdateAppearance:
		r.handleUpdateAppearance(ev.client, ev.payload)

	default:
		r.logger.Warn().Str("msg_type", string(ev.msgType)).Msg("Client sent unsupported message type.")
	}
}

func (r *Room) handleRegisterUser(c *Client, payloadBytes json.RawMessage) {
	var payload RegisterPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.sendErrorEvent(TypeRegistrationError, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	r.mu.Lock()
	username, isNew, becameAdmin, cerr := r.state.Register(payload.Username)
	if cerr != nil {
		r.mu.Unlock()
		c.sendErrorEvent(TypeRegistrationError, cerr)
		return
	}

	c.username = username
	r.state.SyncAdminFlags()
	ack := RegistrationSuccessPayload{
		Username:    username,
		IsAdmin:     username == r.state.AdminName(),
		InitialData: r.state.Snapshot(),
	}
	r.mu.Unlock()

	r.logger.Info().
		Str("username", username).
		Bool("is_new", isNew).
		Bool("is_admin", ack.IsAdmin).
		Msg("User registered.")

	if becameAdmin {
		r.persist()
	}

	if err := c.sendEvent(TypeRegistrationSuccess, ack); err != nil {
		r.logger.Warn().Err(err).Str("username", username).Msg("Failed to send registration ack.")
	}

	// Reconnects only re-associate the connection; the roster is unchanged.
	if isNew {
		r.broadcastState(false)
	}
}

func (r *Room) handleSubmitChoice(c *Client, payloadBytes json.RawMessage) {
	var payload ChoicePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.sendErrorEvent(TypeChoiceError, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	r.mu.Lock()
	cerr := r.state.SubmitChoice(c.username, payload.Word)
	r.mu.Unlock()

	if cerr != nil {
		c.sendErrorEvent(TypeChoiceError, cerr)
		return
	}

	r.logger.Info().Str("username", c.username).Msg("Choice submitted.")
	r.broadcastState(false)
}

func (r *Room) handleUpdateProfile(c *Client, payloadBytes json.RawMessage) {
	var payload ProfilePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.sendErrorEvent(TypeProfileUpdateError, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	r.mu.Lock()
	cerr := r.state.SetAvatar(c.username, payload.PfpURL)
	r.mu.Unlock()

	if cerr != nil {
		c.sendErrorEvent(TypeProfileUpdateError, cerr)
		return
	}

	r.logger.Info().Str("username", c.username).Msg("Profile picture updated.")
	r.broadcastState(false)
	c.sendNotice(TypeProfileUpdateSuccess, "Profile picture updated!")
}

func (r *Room) handleSetAdmin(c *Client, payloadBytes json.RawMessage) {
	var payload AdminTargetPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.sendErrorEvent(TypeAdminActionError, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	r.mu.Lock()
	cerr := r.state.TransferAdmin(c.username, payload.Username)
	r.mu.Unlock()

	if cerr != nil {
		c.sendErrorEvent(TypeAdminActionError, cerr)
		return
	}

	r.logger.Info().
		Str("previous_admin", c.username).
		Str("new_admin", payload.Username).
		Msg("Admin rights transferred.")

	r.persist()
	r.broadcastState(false)
	c.sendNotice(TypeAdminActionSuccess, fmt.Sprintf("Successfully made %s the new admin.", payload.Username))
}

func (r *Room) handleRemoveUser(c *Client, payloadBytes json.RawMessage) {
	var payload AdminTargetPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.sendErrorEvent(TypeAdminActionError, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	target := payload.Username

	r.mu.Lock()
	if c.username == "" || c.username != r.state.AdminName() {
		r.mu.Unlock()
		c.sendErrorEvent(TypeAdminActionError, errs.NewError(errs.ErrNotAdmin))
		return
	}
	if !r.state.HasUser(target) {
		r.mu.Unlock()
		c.sendErrorEvent(TypeAdminActionError, errs.NewError(errs.ErrTargetNotFound))
		return
	}
	if target == c.username {
		r.mu.Unlock()
		c.sendErrorEvent(TypeAdminActionError, errs.NewError(errs.ErrSelfRemoval))
		return
	}

	wasAdmin, cerr := r.state.Remove(target)
	if cerr != nil {
		r.mu.Unlock()
		c.sendErrorEvent(TypeAdminActionError, cerr)
		return
	}

	// Disconnect every live connection belonging to the removed user.
	var kicked []*Client
	for client := range r.clients {
		if client.username == target {
			delete(r.clients, client)
			kicked = append(kicked, client)
		}
	}
	r.mu.Unlock()

	for _, client := range kicked {
		client.Kick("Removed from the room by the admin.")
	}

	r.logger.Info().
		Str("admin", c.username).
		Str("removed", target).
		Bool("target_was_admin", wasAdmin).
		Int("connections_kicked", len(kicked)).
		Msg("User removed by admin.")

	if wasAdmin {
		r.persist()
	}
	r.broadcastState(false)
	c.sendNotice(TypeAdminActionSuccess, fmt.Sprintf("User %s removed successfully.", target))
}

func (r *Room) handleUpdateAppearance(c *Client, payloadBytes json.RawMessage) {
	var payload store.Appearance
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.sendErrorEvent(TypeAppearanceUpdateError, errs.NewError(errs.ErrInvalidAppearance))
		return
	}

	r.mu.Lock()
	if c.username == "" || c.username != r.state.AdminName() {
		r.mu.Unlock()
		c.sendErrorEvent(TypeAppearanceUpdateError, errs.NewError(errs.ErrNotAdmin))
		return
	}

	cerr := r.state.SetAppearance(payload)
	r.mu.Unlock()

	if cerr != nil {
		c.sendErrorEvent(TypeAppearanceUpdateError, cerr)
		return
	}

	r.logger.Info().Str("admin", c.username).Msg("Appearance settings updated.")

	r.persist()
	r.broadcastState(true)
	c.sendNotice(TypeAppearanceUpdateSuccess, "Appearance updated!")
}

// persist writes the admin identity and appearance to disk. Failures are
// logged and non-fatal: in-memory state stays authoritative for the running
// process, only continuity across a restart is at risk.
func (r *Room) persist() {
	r.mu.RLock()
	cfg := store.Config{
		AdminUsername: r.state.AdminName(),
		Appearance:    r.state.Appearance(),
	}
	r.mu.RUnlock()

	if err := r.store.Save(cfg); err != nil {
		r.logger.Error().Err(err).Msg("Persisting room config failed. In-memory state remains authoritative.")
	}
}

// broadcastState resyncs admin flags and pushes the full registry snapshot to
// every live connection. With includeAppearance it additionally pushes the
// appearance settings so clients re-theme without reloading. Sends are
// fire-and-forget: a slow connection drops the frame rather than blocking.
func (r *Room) broadcastState(includeAppearance bool) {
	r.mu.Lock()
	r.state.SyncAdminFlags()
	snapshot := r.state.Snapshot()
	appearance := r.state.Appearance()

	recipients := make([]*Client, 0, len(r.clients))
	for client := range r.clients {
		recipients = append(recipients, client)
	}
	r.mu.Unlock()

	frames := make([][]byte, 0, 2)

	choicesMsg, err := NewMessage(TypeUpdateChoices, snapshot)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to build updateChoices frame.")
		return
	}
	choicesBytes, err := json.Marshal(choicesMsg)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal updateChoices frame.")
		return
	}
	frames = append(frames, choicesBytes)

	if includeAppearance {
		appearanceMsg, err := NewMessage(TypeApplyAppearance, appearance)
		if err != nil {
			r.logger.Error().Err(err).Msg("Failed to build applyAppearance frame.")
		} else if appearanceBytes, err := json.Marshal(appearanceMsg); err == nil {
			frames = append(frames, appearanceBytes)
		}
	}

	for _, client := range recipients {
		for _, frame := range frames {
			if !client.enqueue(frame) {
				r.logger.Warn().
					Str("username", client.username).
					Msg("Client send queue full or closed. Dropping broadcast frame.")
				break
			}
		}
	}
}
