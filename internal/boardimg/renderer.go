// Package boardimg renders a board position to PNG for the board snapshot
// endpoint.
package boardimg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kapu/chessmate/internal/chess"
)

const (
	squareSize   = 72
	boardSquares = 8
	boardSize    = squareSize * boardSquares
	sideMargin   = 28
	topMargin    = 28
	bottomMargin = 28
)

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	marginFill          = color.RGBA{48, 42, 36, 255}
	coordinateTextColor = color.NRGBA{R: 222, G: 214, B: 196, A: 255}
)

type pieceCacheKey struct {
	piece chess.Piece
	size  int
}

// Renderer rasterizes board positions. Piece sprites are cached per
// (piece, size) so repeated renders only pay the SVG cost once.
type Renderer struct {
	mu    sync.RWMutex
	cache map[pieceCacheKey]image.Image
}

func NewRenderer() *Renderer {
	return &Renderer{cache: map[pieceCacheKey]image.Image{}}
}

// RenderPNG draws the board from white's point of view, rank 8 at the top,
// with file and rank labels in the margins.
func (r *Renderer) RenderPNG(ctx context.Context, board *chess.Board) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	origin := image.Point{X: sideMargin, Y: topMargin}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(marginFill), image.Point{}, imagedraw.Src)

	drawSquares(img, origin)
	if err := r.drawPieces(img, board, origin); err != nil {
		return nil, err
	}
	drawCoordinates(img, origin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for row := 0; row < boardSquares; row++ {
		for col := 0; col < boardSquares; col++ {
			x := origin.X + col*squareSize
			y := origin.Y + row*squareSize
			clr := lightSquare
			if (row+col)%2 == 1 {
				clr = darkSquare
			}
			imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func (r *Renderer) drawPieces(dst imagedraw.Image, board *chess.Board, origin image.Point) error {
	for sq, piece := range board.Pieces() {
		sprite, err := r.pieceSprite(piece, squareSize)
		if err != nil {
			return err
		}
		rect := squareRect(sq, origin)
		imagedraw.Draw(dst, rect, sprite, image.Point{}, imagedraw.Over)
	}
	return nil
}

func (r *Renderer) pieceSprite(piece chess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	r.mu.RLock()
	if img, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return img, nil
	}
	r.mu.RUnlock()

	svg := pieceSVG(piece)
	icon, err := oksvg.ReadIconStream(bytes.NewReader([]byte(svg)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg for %s %s: %w", piece.Color, piece.Type, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, imagedraw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	r.mu.Lock()
	r.cache[key] = img
	r.mu.Unlock()

	return img, nil
}

func drawCoordinates(dst *image.RGBA, origin image.Point) {
	drawer := &font.Drawer{
		Dst:  dst,
		Face: basicfont.Face7x13,
		Src:  image.NewUniform(coordinateTextColor),
	}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()

	for row := 0; row < boardSquares; row++ {
		label := string(rune('8' - row))
		baseline := origin.Y + row*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, label, origin.X-sideMargin/2, baseline)
	}
	for col := 0; col < boardSquares; col++ {
		label := string(rune('A' + col))
		centerX := origin.X + col*squareSize + squareSize/2
		baseline := origin.Y + boardSize + ascent + 6
		drawCenteredText(drawer, label, centerX, baseline)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareRect(sq chess.Square, origin image.Point) image.Rectangle {
	col := int(sq.File - 'A')
	row := int('8' - sq.Rank)
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}
