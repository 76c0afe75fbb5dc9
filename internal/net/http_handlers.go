// Package net exposes the server over HTTP: the websocket game endpoint the
// Eaglercraft client connects to, a health probe, and the administrative
// command/control routes used by an operations console.
package net

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"ember-mc/server"
	"ember-mc/server/logging"
)

type HTTPHandlerConfig struct {
	Console *logging.Console
}

type commandRequest struct {
	Command string `json:"command"`
}

type controlRequest struct {
	Action string `json:"action"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewHTTPHandler(srv *server.Server, cfg HTTPHandlerConfig) nethttp.Handler {
	console := cfg.Console

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/mc", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			console.Errorf("Websocket upgrade failed: %v", err)
			return
		}

		conn := newWSConn(raw)
		srv.HandleConnect(conn)

		for {
			messageType, payload, err := raw.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					srv.HandleError(conn, err)
				} else {
					srv.HandleClose(conn)
				}
				conn.Close()
				return
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			srv.HandleFrame(conn, payload)
		}
	})

	mux.HandleFunc("/api/server/command", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		var req commandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == "" {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}

		srv.ExecuteCommand(req.Command)
		writeJSON(w, apiResponse{Success: true, Message: "Command executed"})
	})

	mux.HandleFunc("/api/server/control", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		var req controlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}

		switch req.Action {
		case "start":
			srv.Start()
		case "stop":
			srv.Stop()
		case "restart":
			// Restart blocks for the stop sequence plus a settle delay, so
			// it runs off the request goroutine.
			go srv.Restart()
		default:
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}

		writeJSON(w, apiResponse{Success: true, Message: "Server " + req.Action + " initiated"})
	})

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
