package http

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"labor-quiz-service/internal/domain"
	"labor-quiz-service/internal/reaction"
)

type WSHandler struct {
	api       *API
	challenge reaction.Config
	upgrader  websocket.Upgrader
}

func NewWSHandler(api *API, challenge reaction.Config) *WSHandler {
	return &WSHandler{
		api:       api,
		challenge: challenge,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type challengeView struct {
	State      reaction.State  `json:"state"`
	Countdown  int             `json:"countdown"`
	Attempts   int             `json:"attempts"`
	ReactionMs *int64          `json:"reactionMs,omitempty"`
	BestMs     *int64          `json:"bestMs,omitempty"`
	Rating     reaction.Rating `json:"rating,omitempty"`
}

func newChallengeView(s reaction.Snapshot) challengeView {
	v := challengeView{State: s.State, Countdown: s.Countdown, Attempts: s.Attempts}
	if s.Reaction != nil {
		ms := s.Reaction.Milliseconds()
		v.ReactionMs = &ms
	}
	if s.Best != nil {
		ms := s.Best.Milliseconds()
		v.BestMs = &ms
	}
	if rating, ok := s.Rating(); ok {
		v.Rating = rating
	}
	return v
}

// outbox queues messages for the single connection writer. push never blocks:
// when the queue is full the oldest message is dropped, so callers holding
// locks (the reaction observer) cannot stall on a slow client.
type outbox struct {
	mu     sync.Mutex
	ch     chan outboundMessage
	closed bool
}

func newOutbox(size int) *outbox {
	return &outbox{ch: make(chan outboundMessage, size)}
}

func (o *outbox) push(msg outboundMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	for {
		select {
		case o.ch <- msg:
			return
		default:
		}
		select {
		case <-o.ch:
		default:
		}
	}
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}

// writeLoop drains the outbox until it is closed. After a write error it keeps
// draining without writing so producers never back up.
func writeLoop(conn *websocket.Conn, out *outbox, done chan<- struct{}) {
	defer close(done)
	broken := false
	for msg := range out.ch {
		if broken {
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug().Err(err).Msg("ws write failed")
			broken = true
		}
	}
}

// ServeChallenge runs one reaction-time challenge per connection. The visitor
// must already hold a named session.
func (h *WSHandler) ServeChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := h.api.sessionID(r)
	session, err := h.api.service.Session(ctx, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if session.StudentName == "" {
		writeServiceError(w, domain.ErrNameRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	out := newOutbox(16)
	writerDone := make(chan struct{})
	go writeLoop(conn, out, writerDone)

	opts := []reaction.Option{
		reaction.WithObserver(func(s reaction.Snapshot) {
			out.push(outboundMessage{Type: "state", Payload: newChallengeView(s)})
		}),
	}
	if session.BestReaction != nil {
		opts = append(opts, reaction.WithBest(*session.BestReaction))
	}
	machine := reaction.New(h.challenge, opts...)

	out.push(outboundMessage{Type: "state", Payload: newChallengeView(machine.Snapshot())})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			machine.Start()
		case "press":
			if !machine.Press() {
				continue
			}
			snap := machine.Snapshot()
			if snap.State == reaction.StateSuccess && snap.Reaction != nil {
				if err := h.api.service.RecordReaction(ctx, sessionID, *snap.Reaction); err != nil {
					log.Warn().Err(err).Str("session", sessionID).Msg("failed to record reaction time")
				}
			}
		case "retry":
			machine.Retry()
		case "continue":
			machine.Continue()
		default:
			out.push(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	machine.Close()
	out.close()
	<-writerDone
}

// ServeScores streams the ranked scoreboard until the client disconnects.
func (h *WSHandler) ServeScores(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel, err := h.api.service.SubscribeScores(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("scoreboard subscribe failed")
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: "scoreboard unavailable"}})
		return
	}

	out := newOutbox(8)
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	go writeLoop(conn, out, writerDone)

	go func() {
		defer close(updatesDone)
		for lb := range updates {
			out.push(outboundMessage{Type: "scores", Payload: lb})
		}
	}()

	// The client only listens; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-updatesDone
	out.close()
	<-writerDone
}
