package model

import "strconv"

// SeatStatus is the state of a single cell in a flight's seat grid.
type SeatStatus uint8

const (
	SeatFree SeatStatus = iota
	SeatReserved
)

func (s SeatStatus) String() string {
	if s == SeatReserved {
		return "RESERVED"
	}
	return "FREE"
}

// MaxColumns is the widest grid a seat code can address (A..Z).
const MaxColumns = 26

// SeatAddr is a resolved seat position inside a grid.  Both indexes
// are zero based; the textual code "C4" resolves to {Row: 3, Col: 2}.
//
// Fields:
//  Row – zero based row index (code number minus one).
//  Col – zero based column index (code letter minus 'A').
type SeatAddr struct {
	Row int
	Col int
}

// Code renders the address back into its "{Letter}{Number}" form.
func (a SeatAddr) Code() string {
	return string(rune('A'+a.Col)) + strconv.Itoa(a.Row+1)
}

// SeatMap is a fixed rows × columns grid of seat statuses.  It never
// grows or shrinks after construction.  SeatMap has no locking of its
// own; callers reach it only through the repository store, which
// serializes every mutation.
type SeatMap struct {
	rows  int
	cols  int
	cells [][]SeatStatus // cells[row][col]
}

// NewSeatMap returns a Free-filled grid with the given number of
// columns and rows.  Non-positive dimensions yield an empty grid.
func NewSeatMap(columns, rows int) *SeatMap {
	if columns < 0 {
		columns = 0
	}
	if rows < 0 {
		rows = 0
	}
	cells := make([][]SeatStatus, rows)
	for r := range cells {
		cells[r] = make([]SeatStatus, columns)
	}
	return &SeatMap{rows: rows, cols: columns, cells: cells}
}

func (m *SeatMap) Rows() int    { return m.rows }
func (m *SeatMap) Columns() int { return m.cols }
func (m *SeatMap) Total() int   { return m.rows * m.cols }

// Available counts the Free cells by scanning the grid.
func (m *SeatMap) Available() int {
	n := 0
	for _, row := range m.cells {
		for _, s := range row {
			if s == SeatFree {
				n++
			}
		}
	}
	return n
}

// Reserved counts the Reserved cells.
func (m *SeatMap) Reserved() int { return m.Total() - m.Available() }

// Status reports the state of a resolved address.  Out of range
// addresses report Free and false.
func (m *SeatMap) Status(a SeatAddr) (SeatStatus, bool) {
	if !m.inBounds(a) {
		return SeatFree, false
	}
	return m.cells[a.Row][a.Col], true
}

func (m *SeatMap) inBounds(a SeatAddr) bool {
	return a.Row >= 0 && a.Row < m.rows && a.Col >= 0 && a.Col < m.cols
}

// Resolve turns a seat code into an address.  The code must be at least
// two characters, start with an uppercase letter selecting the column
// and continue with a positive decimal row number.  Anything else, or a
// position outside the grid, is ErrInvalidSeatFormat.
func (m *SeatMap) Resolve(code string) (SeatAddr, error) {
	if len(code) < 2 {
		return SeatAddr{}, ErrInvalidSeatFormat
	}
	letter := code[0]
	if letter < 'A' || letter > 'Z' {
		return SeatAddr{}, ErrInvalidSeatFormat
	}
	digits := code[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return SeatAddr{}, ErrInvalidSeatFormat
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return SeatAddr{}, ErrInvalidSeatFormat
	}
	a := SeatAddr{Row: n - 1, Col: int(letter - 'A')}
	if !m.inBounds(a) {
		return SeatAddr{}, ErrInvalidSeatFormat
	}
	return a, nil
}

// TryReserve resolves every code and marks the seats Reserved only if
// all of them resolve and are currently Free.  A code repeated in the
// same request refers to one seat.  On error the grid is unchanged.
func (m *SeatMap) TryReserve(codes []string) ([]SeatAddr, error) {
	addrs := make([]SeatAddr, 0, len(codes))
	seen := make(map[SeatAddr]struct{}, len(codes))
	for _, code := range codes {
		a, err := m.Resolve(code)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		addrs = append(addrs, a)
	}
	for _, a := range addrs {
		if m.cells[a.Row][a.Col] != SeatFree {
			return nil, ErrSeatNotAvailable
		}
	}
	for _, a := range addrs {
		m.cells[a.Row][a.Col] = SeatReserved
	}
	return addrs, nil
}

// Release marks each address Free.  Releasing a Free seat or an
// address outside the grid is a no-op.
func (m *SeatMap) Release(addrs []SeatAddr) {
	for _, a := range addrs {
		if m.inBounds(a) {
			m.cells[a.Row][a.Col] = SeatFree
		}
	}
}
