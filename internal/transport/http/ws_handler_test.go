package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"labor-quiz-service/internal/domain"
	"labor-quiz-service/internal/reaction"
)

func fastChallenge() reaction.Config {
	return reaction.Config{
		Countdown: 3,
		Tick:      10 * time.Millisecond,
		MinDelay:  20 * time.Millisecond,
		MaxDelay:  20 * time.Millisecond,
	}
}

func wsURL(env *testEnv, path string) string {
	return "ws" + strings.TrimPrefix(env.server.URL, "http") + path
}

// startSession opens a named session and returns the cookie header for dialing.
func startSession(t *testing.T, env *testEnv, client *http.Client, name string) http.Header {
	t.Helper()
	if code := doJSON(t, client, http.MethodPost, env.server.URL+"/api/session", startSessionRequest{StudentName: name}, nil); code != http.StatusCreated {
		t.Fatalf("start session: %d", code)
	}
	req, _ := http.NewRequest(http.MethodGet, env.server.URL, nil)
	header := http.Header{}
	for _, c := range client.Jar.Cookies(req.URL) {
		header.Add("Cookie", c.String())
	}
	return header
}

func readState(t *testing.T, conn *websocket.Conn) challengeView {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %s", msg.Type)
	}
	var view challengeView
	if err := json.Unmarshal(msg.Payload, &view); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return view
}

func waitForState(t *testing.T, conn *websocket.Conn, want reaction.State) challengeView {
	t.Helper()
	for i := 0; i < 20; i++ {
		view := readState(t, conn)
		if view.State == want {
			return view
		}
	}
	t.Fatalf("state %s never arrived", want)
	return challengeView{}
}

func send(t *testing.T, conn *websocket.Conn, typ string) {
	t.Helper()
	if err := conn.WriteJSON(inboundMessage{Type: typ}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestChallengeOverWebSocket(t *testing.T) {
	env := newTestEnv(t, fastChallenge())
	client := newClient(t)
	header := startSession(t, env, client, "Rina")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/challenge"), header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if view := readState(t, conn); view.State != reaction.StateIntro || view.Countdown != 3 {
		t.Fatalf("expected intro with countdown 3, got %+v", view)
	}

	send(t, conn, "start")
	if view := readState(t, conn); view.State != reaction.StateCountdown {
		t.Fatalf("expected countdown, got %+v", view)
	}
	if view := waitForState(t, conn, reaction.StateWaiting); view.Countdown != 0 {
		t.Fatalf("expected countdown to reach 0, got %+v", view)
	}
	waitForState(t, conn, reaction.StateReady)

	send(t, conn, "press")
	success := waitForState(t, conn, reaction.StateSuccess)
	if success.ReactionMs == nil || success.BestMs == nil || success.Rating == "" {
		t.Fatalf("expected reaction, best and rating, got %+v", success)
	}
	if success.Attempts != 1 {
		t.Fatalf("expected one attempt, got %d", success.Attempts)
	}

	// The reaction is stored before the next message is handled.
	send(t, conn, "retry")
	if view := waitForState(t, conn, reaction.StateIntro); view.ReactionMs != nil || view.BestMs == nil {
		t.Fatalf("retry must clear the reaction and keep best, got %+v", view)
	}

	var session sessionView
	doJSON(t, client, http.MethodGet, env.server.URL+"/api/session", nil, &session)
	if session.BestReactionMs == nil || *session.BestReactionMs != *success.BestMs {
		t.Fatalf("expected best reaction on the session, got %+v", session.BestReactionMs)
	}

	send(t, conn, "continue")
	waitForState(t, conn, reaction.StateExited)
}

func TestChallengeFalseStart(t *testing.T) {
	cfg := reaction.Config{Countdown: 0, Tick: time.Millisecond, MinDelay: time.Hour, MaxDelay: time.Hour}
	env := newTestEnv(t, cfg)
	header := startSession(t, env, newClient(t), "Joko")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/challenge"), header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readState(t, conn)
	send(t, conn, "start")
	if view := readState(t, conn); view.State != reaction.StateWaiting {
		t.Fatalf("expected waiting without countdown, got %+v", view)
	}
	send(t, conn, "press")
	view := readState(t, conn)
	if view.State != reaction.StateFalseStart || view.ReactionMs != nil || view.Attempts != 1 {
		t.Fatalf("expected false start, got %+v", view)
	}
}

func TestChallengeRequiresNamedSession(t *testing.T) {
	env := newTestEnv(t, fastChallenge())
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/challenge"), nil)
	if err == nil {
		t.Fatalf("expected handshake to fail without a session")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestScoreboardStream(t *testing.T) {
	env := newTestEnv(t, fastChallenge())
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/scores"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readBoard := func() domain.Leaderboard {
		var msg struct {
			Type    string             `json:"type"`
			Payload domain.Leaderboard `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type != "scores" {
			t.Fatalf("expected scores message, got %s", msg.Type)
		}
		return msg.Payload
	}

	if lb := readBoard(); len(lb.Entries) != 0 {
		t.Fatalf("expected empty board, got %+v", lb.Entries)
	}

	doJSON(t, newClient(t), http.MethodPost, env.server.URL+"/api/score", domain.ScoreInput{StudentName: "Wati", Score: 80, TotalQuestions: 10}, nil)

	lb := readBoard()
	if len(lb.Entries) != 1 || lb.Entries[0].StudentName != "Wati" {
		t.Fatalf("expected pushed score, got %+v", lb.Entries)
	}
}
