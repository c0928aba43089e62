// Package engine contains the rules of the game
// based on https://tetris.wiki/Tetris_Guideline
package engine

// Playfield dimensions. Rows are 0 > 19 top to bottom and represent the
// Y axis, columns are 0 > 9 left to right and represent the X axis.
// A piece may sit partially above row 0 right after spawning or kicking;
// that space is the hidden buffer and is never stored in the grid.
const (
	Cols = 10
	Rows = 20
)

// Kind identifies one of the seven tetrominoes. The zero value ("") is
// also what an empty grid cell holds.
type Kind string

const (
	I Kind = "I"
	J Kind = "J"
	L Kind = "L"
	O Kind = "O"
	S Kind = "S"
	T Kind = "T"
	Z Kind = "Z"
)

// Kinds lists every piece kind once, in catalog order.
var Kinds = [7]Kind{I, J, L, O, S, T, Z}

// colors holds the guideline display color per kind. The engine treats
// these as opaque tokens; renderers map them however they like.
var colors = map[Kind]string{
	I: "#00FFFF",
	J: "#0000FF",
	L: "#FF7F00",
	O: "#FFFF00",
	S: "#00FF00",
	T: "#800080",
	Z: "#FF0000",
}

// Color returns the display color token for the kind.
func (k Kind) Color() string { return colors[k] }

// Shape returns a fresh copy of the kind's spawn matrix, for renderers
// drawing next and hold previews.
func (k Kind) Shape() [][]bool { return baseShape(k) }

// shapes holds the spawn-orientation matrix for every kind. The I piece
// lives in a 4x4 box and the O piece in a 2x2 box; the five remaining
// kinds share a 3x3 box. These are the canonical catalog entries and are
// never handed out directly: see baseShape.
var shapes = map[Kind][][]bool{
	I: {
		{false, false, false, false},
		{true, true, true, true},
		{false, false, false, false},
		{false, false, false, false},
	},
	J: {
		{true, false, false},
		{true, true, true},
		{false, false, false},
	},
	L: {
		{false, false, true},
		{true, true, true},
		{false, false, false},
	},
	O: {
		{true, true},
		{true, true},
	},
	S: {
		{false, true, true},
		{true, true, false},
		{false, false, false},
	},
	T: {
		{false, true, false},
		{true, true, true},
		{false, false, false},
	},
	Z: {
		{true, true, false},
		{false, true, true},
		{false, false, false},
	},
}

// baseShape returns a fresh copy of the kind's spawn matrix. Rotation
// mutates piece matrices in place, so the catalog originals must never
// leak out.
func baseShape(k Kind) [][]bool {
	return copyCells(shapes[k])
}

func copyCells(cells [][]bool) [][]bool {
	out := make([][]bool, len(cells))
	for i := range cells {
		out[i] = make([]bool, len(cells[i]))
		copy(out[i], cells[i])
	}
	return out
}
