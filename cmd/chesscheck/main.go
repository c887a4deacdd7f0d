// chesscheck is a smoke checker for a running chess service. It always
// probes /healthz; with CHESS_SMOKE_FLOW=1 it also registers two throwaway
// accounts and plays a few opening moves end to end.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kapu/chessmate/internal/apiclient"
)

func main() {
	baseURL := os.Getenv("CHESS_BASE_URL")
	if baseURL == "" {
		log.Fatal("CHESS_BASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	probe := apiclient.New(baseURL, apiclient.WithTimeout(8*time.Second))
	if err := probe.Health(ctx); err != nil {
		log.Fatalf("/healthz error: %v", err)
	}
	log.Println("/healthz ok")

	if os.Getenv("CHESS_SMOKE_FLOW") != "1" {
		log.Println("CHESS_SMOKE_FLOW not set; skipping game flow check")
		return
	}

	if err := runFlow(ctx, baseURL); err != nil {
		log.Fatalf("game flow error: %v", err)
	}
	log.Println("game flow ok")
}

func runFlow(ctx context.Context, baseURL string) error {
	suffix := uuid.NewString()[:8]
	white := apiclient.New(baseURL)
	black := apiclient.New(baseURL)

	for name, c := range map[string]*apiclient.Client{
		"smoke-white-" + suffix: white,
		"smoke-black-" + suffix: black,
	} {
		if _, err := c.CreateAccount(ctx, name, "smoke-password"); err != nil {
			return fmt.Errorf("create account %s: %w", name, err)
		}
		if err := c.Authenticate(ctx, name, "smoke-password"); err != nil {
			return fmt.Errorf("authenticate %s: %w", name, err)
		}
	}

	g, err := white.CreateGame(ctx, "WHITE")
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	log.Printf("created game %s", g.GameID)

	if _, err := black.JoinGame(ctx, g.GameID, g.InviteSecret); err != nil {
		return fmt.Errorf("join game: %w", err)
	}

	moves := []struct {
		player   *apiclient.Client
		from, to string
	}{
		{white, "E2", "E4"},
		{black, "E7", "E5"},
		{white, "B1", "C3"},
		{black, "B8", "C6"},
	}
	for _, mv := range moves {
		applied, err := mv.player.Move(ctx, g.GameID, mv.from, mv.to)
		if err != nil {
			return fmt.Errorf("move %s-%s: %w", mv.from, mv.to, err)
		}
		log.Printf("move %s-%s ok (%s %s)", mv.from, mv.to, applied.Piece.Color, applied.Piece.PieceType)
	}

	final, err := white.GetGame(ctx, g.GameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if len(final.MoveHistory) != len(moves) {
		return fmt.Errorf("move history has %d entries, want %d", len(final.MoveHistory), len(moves))
	}
	return nil
}
