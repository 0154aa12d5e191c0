package domain

import "fmt"

// Quadrant is one cell of the Eisenhower matrix.
type Quadrant string

// Quadrant values.
const (
	QuadrantDoNow     Quadrant = "do_now"
	QuadrantSchedule  Quadrant = "schedule"
	QuadrantDelegate  Quadrant = "delegate"
	QuadrantEliminate Quadrant = "eliminate"
)

type quadrantInfo struct {
	label    string
	subtitle string
}

var quadrantInfos = map[Quadrant]quadrantInfo{
	QuadrantDoNow:     {label: "LÀM NGAY", subtitle: "Quan trọng & Khẩn cấp"},
	QuadrantSchedule:  {label: "LÊN LỊCH", subtitle: "Quan trọng & Không khẩn cấp"},
	QuadrantDelegate:  {label: "GIAO VIỆC", subtitle: "Không quan trọng & Khẩn cấp"},
	QuadrantEliminate: {label: "LOẠI BỎ", subtitle: "Không quan trọng & Không khẩn cấp"},
}

// Quadrants returns every quadrant in canonical board order.
func Quadrants() []Quadrant {
	return []Quadrant{QuadrantDoNow, QuadrantSchedule, QuadrantDelegate, QuadrantEliminate}
}

// ParseQuadrant validates s as a Quadrant.
func ParseQuadrant(s string) (Quadrant, error) {
	q := Quadrant(s)
	if !q.Valid() {
		return "", fmt.Errorf("%w: unknown quadrant %q", ErrValidation, s)
	}
	return q, nil
}

// Valid reports whether q is one of the four quadrants.
func (q Quadrant) Valid() bool {
	_, ok := quadrantInfos[q]
	return ok
}

// Label is the short display name.
func (q Quadrant) Label() string {
	return quadrantInfos[q].label
}

// Subtitle is the importance/urgency description.
func (q Quadrant) Subtitle() string {
	return quadrantInfos[q].subtitle
}

func (q Quadrant) String() string {
	return string(q)
}
