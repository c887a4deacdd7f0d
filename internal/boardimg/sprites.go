package boardimg

import (
	"fmt"

	"github.com/kapu/chessmate/internal/chess"
)

// Piece sprites are generated rather than shipped as asset files. Each piece
// is a flat silhouette in a 45x45 viewBox, the conventional dimension for
// chess piece sets.

const svgHeader = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45">`

func pieceSVG(piece chess.Piece) string {
	fill, stroke := "#f8f8f8", "#1b1b1b"
	if piece.Color == chess.Black {
		fill, stroke = "#2b2b2b", "#e6e6e6"
	}
	return fmt.Sprintf(`%s<g fill="%s" stroke="%s" stroke-width="1.5">%s</g></svg>`,
		svgHeader, fill, stroke, pieceBody(piece.Type))
}

func pieceBody(t chess.PieceType) string {
	switch t {
	case chess.King:
		return `<rect x="21" y="6" width="3" height="10"/>` +
			`<rect x="17.5" y="9" width="10" height="3"/>` +
			`<path d="M 22.5 16 C 14 16 11 24 15 30 L 30 30 C 34 24 31 16 22.5 16 z"/>` +
			`<rect x="13" y="30" width="19" height="5" rx="1.5"/>` +
			`<rect x="11" y="35" width="23" height="4" rx="1.5"/>`
	case chess.Queen:
		return `<circle cx="9" cy="12" r="2.4"/>` +
			`<circle cx="16" cy="9.5" r="2.4"/>` +
			`<circle cx="22.5" cy="8.5" r="2.4"/>` +
			`<circle cx="29" cy="9.5" r="2.4"/>` +
			`<circle cx="36" cy="12" r="2.4"/>` +
			`<path d="M 9 14 L 14 29 L 31 29 L 36 14 L 29 24 L 22.5 11 L 16 24 z"/>` +
			`<rect x="13" y="29" width="19" height="5" rx="1.5"/>` +
			`<rect x="11" y="34" width="23" height="4" rx="1.5"/>`
	case chess.Rook:
		return `<path d="M 12 9 L 12 15 L 33 15 L 33 9 L 29 9 L 29 12 L 25 12 L 25 9 L 20 9 L 20 12 L 16 12 L 16 9 z"/>` +
			`<path d="M 15 15 L 16 28 L 29 28 L 30 15 z"/>` +
			`<rect x="13.5" y="28" width="18" height="5" rx="1"/>` +
			`<rect x="11" y="33" width="23" height="4" rx="1"/>`
	case chess.Bishop:
		return `<circle cx="22.5" cy="9" r="2.6"/>` +
			`<path d="M 22.5 12 C 16 16 14 22 16 27 L 29 27 C 31 22 29 16 22.5 12 z"/>` +
			`<rect x="15" y="27" width="15" height="4.5" rx="1.5"/>` +
			`<rect x="12" y="33" width="21" height="4" rx="1.5"/>`
	case chess.Knight:
		return `<path d="M 15 36 C 15 26 17 21 24 17 L 21 10 L 27 14 L 31 18 C 34 23 34 29 33 36 z"/>` +
			`<path d="M 24 17 C 19 18 15 21 14 25 L 18 26 C 19 22 21 19 24 17 z"/>` +
			`<rect x="12" y="36" width="23" height="4" rx="1.5"/>`
	case chess.Pawn:
		return `<circle cx="22.5" cy="12" r="4.5"/>` +
			`<path d="M 22.5 16 C 18 17 16.5 21 18 26 L 27 26 C 28.5 21 27 17 22.5 16 z"/>` +
			`<path d="M 18 26 L 15 34 L 30 34 L 27 26 z"/>` +
			`<rect x="13" y="34" width="19" height="4" rx="1.5"/>`
	default:
		return `<circle cx="22.5" cy="22.5" r="12"/>`
	}
}
