package engine

import (
	"fmt"
	"slices"
)

// Grid is the playfield contents: Rows x Cols cells, row 0 at the top.
// An empty Kind is an empty cell, anything else is settled material
// carrying the kind it came from.
type Grid [Rows][Cols]Kind

type board struct {
	cells Grid
}

// collides reports whether placing the given matrix with its top-left
// corner at (x, y) overlaps the walls, the floor or settled cells. Cells
// above row 0 are in the hidden buffer: they never hit a bound and there
// is nothing there to overlap.
func (b *board) collides(cells [][]bool, x, y int) bool {
	for ir, row := range cells {
		for ic, occupied := range row {
			if !occupied {
				continue
			}
			px := x + ic
			py := y + ir
			if px < 0 || px >= Cols || py >= Rows {
				return true
			}
			if py >= 0 && b.cells[py][px] != "" {
				return true
			}
		}
	}
	return false
}

// merge writes the matrix into the grid permanently, stamping each cell
// with the piece's kind. Cells still in the hidden buffer are dropped.
// An out-of-bounds occupied cell means the caller skipped a collision
// check, which is unrecoverable.
func (b *board) merge(cells [][]bool, x, y int, k Kind) {
	for ir, row := range cells {
		for ic, occupied := range row {
			if !occupied {
				continue
			}
			px := x + ic
			py := y + ir
			if py < 0 {
				continue
			}
			if px < 0 || px >= Cols || py >= Rows {
				panic(fmt.Sprintf("engine: merge out of bounds at (%d,%d)", px, py))
			}
			b.cells[py][px] = k
		}
	}
}

// fullRows returns the indices of completely occupied rows, top to
// bottom.
func (b *board) fullRows() []int {
	var full []int
	for i, row := range b.cells {
		complete := true
		for _, c := range row {
			if c == "" {
				complete = false
				break
			}
		}
		if complete {
			full = append(full, i)
		}
	}
	return full
}

// clearRows removes the given rows and inserts an equal number of empty
// rows at the top, keeping every surviving row in its original relative
// order. Removing a row only shifts the rows above it, so processing
// top to bottom keeps the later indices valid; the input is sorted to
// guarantee that order.
func (b *board) clearRows(rows []int) {
	ordered := slices.Clone(rows)
	slices.Sort(ordered)
	for _, r := range ordered {
		if r < 0 || r >= Rows {
			panic(fmt.Sprintf("engine: clearing row %d out of range", r))
		}
		copy(b.cells[1:r+1], b.cells[0:r])
		b.cells[0] = [Cols]Kind{}
	}
}
