package engine

// Piece is the active tetromino: a private copy of its kind's matrix
// plus its position on the grid. X and Y locate the matrix's top-left
// cell; Y may be negative while part of the piece is still in the
// hidden buffer. Rotation counts clockwise quarter turns from spawn and
// is always in 0..3.
type Piece struct {
	Kind     Kind
	Cells    [][]bool
	X, Y     int
	Rotation int
	GhostY   int
}

// newPiece spawns the kind at the top of the grid, horizontally
// centered, in spawn orientation.
func newPiece(k Kind) *Piece {
	cells := baseShape(k)
	return &Piece{
		Kind:  k,
		Cells: cells,
		X:     Cols/2 - len(cells)/2,
		Y:     0,
	}
}

func (p *Piece) copy() *Piece {
	if p == nil {
		return nil
	}
	c := *p
	c.Cells = copyCells(p.Cells)
	return &c
}

// rotatedCells returns a new matrix turned a quarter in the given
// direction: +1 clockwise, -1 counter-clockwise. The original is left
// untouched so a failed kick search can revert for free.
func rotatedCells(cells [][]bool, dir int) [][]bool {
	n := len(cells)
	out := make([][]bool, n)
	for i := range out {
		out[i] = make([]bool, n)
	}
	for r := range cells {
		for c := range cells[r] {
			if dir > 0 {
				out[c][n-1-r] = cells[r][c]
			} else {
				out[n-1-c][r] = cells[r][c]
			}
		}
	}
	return out
}
