package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"live-polling-service/internal/session"
)

// WSHandler upgrades HTTP requests to websockets and feeds inbound
// events into the coordinator. Rejected or malformed events are logged
// and dropped; the connection stays open and the next broadcast brings
// the client back in sync.
type WSHandler struct {
	coordinator *session.Coordinator
	upgrader    websocket.Upgrader
}

func NewWSHandler(coordinator *session.Coordinator) *WSHandler {
	return &WSHandler{
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinStudentPayload struct {
	Name string `json:"name"`
}

type chatPayload struct {
	Message   string `json:"message"`
	IsTeacher bool   `json:"isTeacher"`
}

type submitAnswerPayload struct {
	PollID      string `json:"pollId"`
	Answer      string `json:"answer"`
	StudentName string `json:"studentName"`
}

type endPollPayload struct {
	PollID string `json:"pollId"`
}

type kickPayload struct {
	StudentID string `json:"studentId"`
}

// client adapts one websocket connection to session.Conn. Send never
// blocks: under pressure the oldest queued event is dropped in favor of
// the newest, since every broadcast carries full state.
type client struct {
	id   string
	send chan session.Event
}

func (c *client) ID() string { return c.id }

func (c *client) Send(ev session.Event) {
	select {
	case c.send <- ev:
	default:
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- ev:
		default:
		}
	}
}

// ServeWS runs one connection: a writer goroutine drains the send
// buffer while the read loop dispatches inbound events one at a time.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	cl := &client{id: uuid.NewString(), send: make(chan session.Event, 32)}
	h.coordinator.Attach(cl)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range cl.send {
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(cl.id, inbound)
	}

	// Detach before closing the channel: once the coordinator no
	// longer knows this connection, no further Send can race the close.
	h.coordinator.Detach(cl.id)
	close(cl.send)
	<-writerDone
}

func (h *WSHandler) dispatch(connID string, inbound inboundMessage) {
	switch inbound.Type {
	case session.EventJoinAsStudent:
		var p joinStudentPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			log.Printf("ws %s: bad %s payload: %v", connID, inbound.Type, err)
			return
		}
		if err := h.coordinator.JoinStudent(connID, p.Name); err != nil {
			log.Printf("ws %s: join rejected: %v", connID, err)
		}

	case session.EventJoinAsTeacher:
		if err := h.coordinator.JoinTeacher(connID); err != nil {
			log.Printf("ws %s: teacher join rejected: %v", connID, err)
		}

	case session.EventSendChatMessage:
		var p chatPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			log.Printf("ws %s: bad %s payload: %v", connID, inbound.Type, err)
			return
		}
		if err := h.coordinator.SendChat(connID, p.Message, p.IsTeacher); err != nil {
			log.Printf("ws %s: chat rejected: %v", connID, err)
		}

	case session.EventStartPoll:
		var req session.StartPollRequest
		if err := json.Unmarshal(inbound.Payload, &req); err != nil {
			log.Printf("ws %s: bad %s payload: %v", connID, inbound.Type, err)
			return
		}
		if _, err := h.coordinator.StartPoll(req); err != nil {
			log.Printf("ws %s: start poll rejected: %v", connID, err)
		}

	case session.EventSubmitAnswer:
		var p submitAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			log.Printf("ws %s: bad %s payload: %v", connID, inbound.Type, err)
			return
		}
		if err := h.coordinator.SubmitAnswer(p.PollID, p.StudentName, p.Answer); err != nil {
			log.Printf("ws %s: answer ignored: %v", connID, err)
		}

	case session.EventEndPoll:
		var p endPollPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			log.Printf("ws %s: bad %s payload: %v", connID, inbound.Type, err)
			return
		}
		if err := h.coordinator.EndPoll(p.PollID); err != nil {
			log.Printf("ws %s: end poll ignored: %v", connID, err)
		}

	case session.EventKickStudent:
		var p kickPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			log.Printf("ws %s: bad %s payload: %v", connID, inbound.Type, err)
			return
		}
		if err := h.coordinator.Kick(p.StudentID); err != nil {
			log.Printf("ws %s: kick ignored: %v", connID, err)
		}

	default:
		log.Printf("ws %s: unsupported message type %q", connID, inbound.Type)
	}
}
