package season

import "fmt"

// Pointer is the (year, week) the application treats as "now" for picks.
type Pointer struct {
	Year int
	Week string
}

func (p Pointer) IsZero() bool {
	return p.Year == 0 && p.Week == ""
}

func (p Pointer) String() string {
	return fmt.Sprintf("%d %s", p.Year, p.Week)
}

// Entry is one cataloged (year, week) pair.
type Entry struct {
	ID   int64
	Year int
	Week string
}
