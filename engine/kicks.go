package engine

// Offset is a wall-kick candidate: the translation to apply to a piece
// together with its rotated matrix. DY is positive downwards, matching
// the grid's row axis, so the published SRS y values appear negated here.
type Offset struct {
	DX, DY int
}

// Wall-kick data from https://tetris.wiki/Super_Rotation_System, keyed by
// the ordered (from, to) rotation pair. Five candidates per transition,
// the first always (0,0) which is the plain unkicked rotation. J, L, S,
// T and Z share one table; the I piece has its own because of its 4x4
// bounding box; the O piece never needs one.
var jlstzKicks = map[[2]int][]Offset{
	{0, 1}: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	{1, 0}: {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	{1, 2}: {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	{2, 1}: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	{2, 3}: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
	{3, 2}: {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	{3, 0}: {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	{0, 3}: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
}

var iKicks = map[[2]int][]Offset{
	{0, 1}: {{0, 0}, {-2, 0}, {1, 0}, {-2, 1}, {1, -2}},
	{1, 0}: {{0, 0}, {2, 0}, {-1, 0}, {2, -1}, {-1, 2}},
	{1, 2}: {{0, 0}, {-1, 0}, {2, 0}, {-1, -2}, {2, 1}},
	{2, 1}: {{0, 0}, {1, 0}, {-2, 0}, {1, 2}, {-2, -1}},
	{2, 3}: {{0, 0}, {2, 0}, {-1, 0}, {2, -1}, {-1, 2}},
	{3, 2}: {{0, 0}, {-2, 0}, {1, 0}, {-2, 1}, {1, -2}},
	{3, 0}: {{0, 0}, {1, 0}, {-2, 0}, {1, 2}, {-2, -1}},
	{0, 3}: {{0, 0}, {-1, 0}, {2, 0}, {-1, -2}, {2, 1}},
}

var noKicks = []Offset{{0, 0}}

// kicksFor returns the ordered kick candidates for rotating kind k from
// rotation state `from` to state `to`.
func kicksFor(k Kind, from, to int) []Offset {
	switch k {
	case O:
		return noKicks
	case I:
		return iKicks[[2]int{from, to}]
	default:
		return jlstzKicks[[2]int{from, to}]
	}
}
