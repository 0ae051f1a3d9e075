/*
Package handler provides the HTTP handlers and routing setup for the voting room server.

This file contains the WebSocket upgrade handler: rate limiting, the protocol
upgrade, and starting the client read/write pumps.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/CALEBPOTZ/battleroyal/internal/app/room"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/errs"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/limiter"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/logx"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/resp"
)

// HandleWebSocket creates the HandlerFunc that upgrades connections and hands
// them to the Room. Registration happens afterwards over the socket itself,
// via the registerUser event.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := room.NewClient(deps.Room, conn)

		go client.WritePump()

		deps.Room.RegisterClient(client)

		client.ReadPump()
	}
}
