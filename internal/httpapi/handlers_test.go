package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/kapu/chessmate/internal/account"
	"github.com/kapu/chessmate/internal/gamestore"
	"github.com/kapu/chessmate/internal/match"
	"github.com/kapu/chessmate/internal/msgcat"
	"github.com/kapu/chessmate/internal/security"
	"github.com/kapu/chessmate/pkg/gamedto"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	msgs, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}

	events := match.NewRedisEvents(rdb)
	matches := match.NewManager(gamestore.NewRedisStore(rdb), match.WithPublisher(events))
	tokens := security.NewTokenService("test-signing-key", time.Hour)

	srv := NewServer(
		account.NewRedisStore(rdb),
		tokens,
		matches,
		msgs,
		WithSubscriber(events),
		WithBcryptCost(bcrypt.MinCost),
	)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends a request with an optional access token cookie and decodes
// the response body into out when out is non-nil.
func doJSON(t *testing.T, method, url, cookie string, body, out any) (int, http.Header) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", accessTokenCookie+"="+cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, resp.Header
}

func registerAndLogin(t *testing.T, baseURL, username string) string {
	t.Helper()

	creds := gamedto.CreateAccountRequest{Username: username, Password: "hunter22"}
	if status, _ := doJSON(t, http.MethodPost, baseURL+"/api/v1/accounts", "", creds, nil); status != http.StatusOK {
		t.Fatalf("create account %s: status %d", username, status)
	}

	req, _ := json.Marshal(creds)
	resp, err := http.Post(baseURL+"/api/v1/authenticate", "application/json", bytes.NewReader(req))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticate %s: status %d", username, resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == accessTokenCookie {
			if !c.HttpOnly {
				t.Fatal("access token cookie must be HttpOnly")
			}
			if c.SameSite != http.SameSiteStrictMode {
				t.Fatal("access token cookie must be SameSite=Strict")
			}
			return c.Value
		}
	}
	t.Fatal("authenticate response did not set the access token cookie")
	return ""
}

func TestAccountLifecycle(t *testing.T) {
	ts := newTestServer(t)

	creds := gamedto.CreateAccountRequest{Username: "alice", Password: "hunter22"}
	var created gamedto.AccountResponse
	status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/accounts", "", creds, &created)
	if status != http.StatusOK {
		t.Fatalf("create account: status %d", status)
	}
	if _, err := uuid.Parse(created.UserID); err != nil {
		t.Fatalf("user_id is not a uuid: %q", created.UserID)
	}

	var dup gamedto.Failure
	if status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/accounts", "", creds, &dup); status != http.StatusBadRequest {
		t.Fatalf("duplicate username: status %d", status)
	}
	if dup.UserFeedback == "" {
		t.Fatal("failure response must carry user_feedback")
	}

	wrong := gamedto.AuthenticateRequest{Username: "alice", Password: "nope"}
	if status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/authenticate", "", wrong, nil); status != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d", status)
	}
}

func TestGameEndpointsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	body := gamedto.CreateGameRequest{DesiredColor: "WHITE"}
	if status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/games", "", body, nil); status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create game: status %d", status)
	}
	if status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/games", "garbage-token", body, nil); status != http.StatusUnauthorized {
		t.Fatalf("bogus token: status %d", status)
	}
}

func TestFullGameFlow(t *testing.T) {
	ts := newTestServer(t)

	aliceToken := registerAndLogin(t, ts.URL, "alice")
	bobToken := registerAndLogin(t, ts.URL, "bob")

	var created gamedto.Game
	status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/games", aliceToken,
		gamedto.CreateGameRequest{DesiredColor: "WHITE"}, &created)
	if status != http.StatusOK {
		t.Fatalf("create game: status %d", status)
	}
	if len(created.InviteSecret) != 32 {
		t.Fatalf("invite secret length = %d", len(created.InviteSecret))
	}
	if len(created.Board) != 32 {
		t.Fatalf("fresh game should have 32 pieces, got %d", len(created.Board))
	}
	if created.NextTurn != "WHITE" {
		t.Fatalf("next_turn = %q", created.NextTurn)
	}
	if created.WhiteUserID == nil || created.BlackUserID != nil {
		t.Fatalf("creator should hold the white slot only: %+v", created)
	}

	gameURL := ts.URL + "/api/v1/games/" + created.GameID

	if status, _ := doJSON(t, http.MethodPost, gameURL+"/join?invite_secret=wrong", bobToken, nil, nil); status != http.StatusBadRequest {
		t.Fatalf("join with bad secret: status %d", status)
	}

	var joined gamedto.Game
	status, _ = doJSON(t, http.MethodPost, gameURL+"/join?invite_secret="+created.InviteSecret, bobToken, nil, &joined)
	if status != http.StatusOK {
		t.Fatalf("join: status %d", status)
	}
	if joined.BlackUserID == nil {
		t.Fatal("joiner should take the black slot")
	}
	if joined.InviteSecret != "" {
		t.Fatal("invite secret must only appear in the creation response")
	}

	var fetched gamedto.Game
	if status, _ := doJSON(t, http.MethodGet, gameURL, aliceToken, nil, &fetched); status != http.StatusOK {
		t.Fatalf("get game: status %d", status)
	}
	if fetched.InviteSecret != "" {
		t.Fatal("get game must not leak the invite secret")
	}

	var applied gamedto.Move
	status, _ = doJSON(t, http.MethodPost, gameURL+"/moves", aliceToken,
		gamedto.MoveRequest{SquareFrom: "E2", SquareTo: "E4"}, &applied)
	if status != http.StatusOK {
		t.Fatalf("move: status %d", status)
	}
	if applied.SquareFrom != "E2" || applied.SquareTo != "E4" || applied.Piece.PieceType != "PAWN" {
		t.Fatalf("unexpected move response: %+v", applied)
	}

	var afterMove gamedto.Game
	if status, _ := doJSON(t, http.MethodGet, gameURL, aliceToken, nil, &afterMove); status != http.StatusOK {
		t.Fatalf("get game after move: status %d", status)
	}
	if len(afterMove.MoveHistory) != 1 || afterMove.NextTurn != "BLACK" {
		t.Fatalf("move did not apply: %+v", afterMove)
	}
	if _, ok := afterMove.Board["E4"]; !ok {
		t.Fatal("pawn should sit on E4 after the move")
	}
	if _, ok := afterMove.Board["E2"]; ok {
		t.Fatal("E2 should be empty after the move")
	}

	if status, _ := doJSON(t, http.MethodPost, gameURL+"/moves", aliceToken,
		gamedto.MoveRequest{SquareFrom: "D2", SquareTo: "D4"}, nil); status != http.StatusForbidden {
		t.Fatalf("moving out of turn: status %d", status)
	}

	if status, _ := doJSON(t, http.MethodPost, gameURL+"/moves", bobToken,
		gamedto.MoveRequest{SquareFrom: "Z9", SquareTo: "E5"}, nil); status != http.StatusBadRequest {
		t.Fatalf("malformed square: status %d", status)
	}

	outsiderToken := registerAndLogin(t, ts.URL, "carol")
	if status, _ := doJSON(t, http.MethodPost, gameURL+"/moves", outsiderToken,
		gamedto.MoveRequest{SquareFrom: "E7", SquareTo: "E5"}, nil); status != http.StatusForbidden {
		t.Fatalf("outsider move: status %d", status)
	}
}

func TestGameNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice")

	var failure gamedto.Failure
	status, _ := doJSON(t, http.MethodGet, ts.URL+"/api/v1/games/"+uuid.NewString(), token, nil, &failure)
	if status != http.StatusNotFound {
		t.Fatalf("unknown game: status %d", status)
	}
	if failure.UserFeedback == "" {
		t.Fatal("failure response must carry user_feedback")
	}

	if status, _ := doJSON(t, http.MethodGet, ts.URL+"/api/v1/games/not-a-uuid", token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("malformed game id: status %d", status)
	}
}

func TestBoardPNG(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice")

	var created gamedto.Game
	if status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/games", token,
		gamedto.CreateGameRequest{DesiredColor: "BLACK"}, &created); status != http.StatusOK {
		t.Fatalf("create game: status %d", status)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/games/"+created.GameID+"/board.png", nil)
	req.Header.Set("Cookie", accessTokenCookie+"="+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("board.png: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("board.png: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatal("response is not a png")
	}
}

func TestWatchStreamsMoves(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := registerAndLogin(t, ts.URL, "alice")
	bobToken := registerAndLogin(t, ts.URL, "bob")

	var created gamedto.Game
	if status, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/games", aliceToken,
		gamedto.CreateGameRequest{DesiredColor: "WHITE"}, &created); status != http.StatusOK {
		t.Fatalf("create game: status %d", status)
	}
	gameURL := ts.URL + "/api/v1/games/" + created.GameID
	if status, _ := doJSON(t, http.MethodPost, gameURL+"/join?invite_secret="+created.InviteSecret, bobToken, nil, nil); status != http.StatusOK {
		t.Fatal("join failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(gameURL, "http://", "ws://", 1) + "/watch"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Cookie": []string{fmt.Sprintf("%s=%s", accessTokenCookie, bobToken)}},
	})
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if status, _ := doJSON(t, http.MethodPost, gameURL+"/moves", aliceToken,
		gamedto.MoveRequest{SquareFrom: "E2", SquareTo: "E4"}, nil); status != http.StatusOK {
		t.Fatalf("move: status %d", status)
	}

	var ev match.MoveEvent
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read move event: %v", err)
	}
	if ev.SquareFrom != "E2" || ev.SquareTo != "E4" || ev.Ply != 1 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
