// Package teethcatalog holds the static FDI tooth reference table: the 20
// deciduous and 32 permanent teeth with their typical eruption windows (and,
// for deciduous teeth, shedding windows), all expressed in months of age.
//
// The table is fixed clinical reference data, so it lives in memory rather
// than in the database.
package teethcatalog

import (
	"fmt"
	"sort"
)

// Tooth is one catalog entry. Occurrence months are inclusive bounds.
type Tooth struct {
	Code      string `json:"code"`       // FDI notation, e.g. "51", "36"
	Kind      string `json:"type"`       // DECIDUOUS, PERMANENT
	Arch      string `json:"arch"`       // UPPER, LOWER
	Side      string `json:"side"`       // LEFT, RIGHT (patient's perspective)
	ToothKind string `json:"tooth_kind"` // INCISOR, CANINE, PREMOLAR, MOLAR
	Name      string `json:"name"`
	Order     int    `json:"order"`

	EruptStart int `json:"start_occurrence_month"`
	EruptEnd   int `json:"end_occurrence_month"`

	// Shedding window, deciduous teeth only.
	ShedStart *int `json:"start_shedding_month,omitempty"`
	ShedEnd   *int `json:"end_shedding_month,omitempty"`
}

// Kinds
const (
	KindDeciduous = "DECIDUOUS"
	KindPermanent = "PERMANENT"
)

// Arches
const (
	ArchUpper = "UPPER"
	ArchLower = "LOWER"
)

// Sides
const (
	SideLeft  = "LEFT"
	SideRight = "RIGHT"
)

// Tooth kinds
const (
	ToothIncisor  = "INCISOR"
	ToothCanine   = "CANINE"
	ToothPremolar = "PREMOLAR"
	ToothMolar    = "MOLAR"
)

// IsValidKind checks if a catalog kind is valid.
func IsValidKind(kind string) bool {
	return kind == KindDeciduous || kind == KindPermanent
}

// position describes one tooth position within a quadrant, with its
// eruption (and optional shedding) window for that arch.
type position struct {
	digit      int
	toothKind  string
	name       string
	eruptStart int
	eruptEnd   int
	shedStart  int // 0 means no shedding window
	shedEnd    int
}

// Typical windows per the standard primary/permanent dentition charts.
var (
	deciduousUpper = []position{
		{1, ToothIncisor, "central incisor", 8, 12, 72, 84},
		{2, ToothIncisor, "lateral incisor", 9, 13, 84, 96},
		{3, ToothCanine, "canine", 16, 22, 120, 144},
		{4, ToothMolar, "first molar", 13, 19, 108, 132},
		{5, ToothMolar, "second molar", 25, 33, 120, 144},
	}
	deciduousLower = []position{
		{1, ToothIncisor, "central incisor", 6, 10, 72, 84},
		{2, ToothIncisor, "lateral incisor", 10, 16, 84, 96},
		{3, ToothCanine, "canine", 17, 23, 108, 144},
		{4, ToothMolar, "first molar", 14, 18, 108, 132},
		{5, ToothMolar, "second molar", 23, 31, 120, 144},
	}
	permanentUpper = []position{
		{1, ToothIncisor, "central incisor", 84, 96, 0, 0},
		{2, ToothIncisor, "lateral incisor", 96, 108, 0, 0},
		{3, ToothCanine, "canine", 132, 144, 0, 0},
		{4, ToothPremolar, "first premolar", 120, 132, 0, 0},
		{5, ToothPremolar, "second premolar", 120, 144, 0, 0},
		{6, ToothMolar, "first molar", 72, 84, 0, 0},
		{7, ToothMolar, "second molar", 144, 156, 0, 0},
		{8, ToothMolar, "third molar", 204, 252, 0, 0},
	}
	permanentLower = []position{
		{1, ToothIncisor, "central incisor", 72, 84, 0, 0},
		{2, ToothIncisor, "lateral incisor", 84, 96, 0, 0},
		{3, ToothCanine, "canine", 108, 120, 0, 0},
		{4, ToothPremolar, "first premolar", 120, 144, 0, 0},
		{5, ToothPremolar, "second premolar", 132, 144, 0, 0},
		{6, ToothMolar, "first molar", 72, 84, 0, 0},
		{7, ToothMolar, "second molar", 132, 156, 0, 0},
		{8, ToothMolar, "third molar", 204, 252, 0, 0},
	}
)

// quadrant describes one FDI quadrant digit.
type quadrant struct {
	digit int
	arch  string
	side  string
}

// FDI quadrant numbering: permanent 1-4, deciduous 5-8, clockwise from the
// patient's upper right.
var (
	permanentQuadrants = []quadrant{
		{1, ArchUpper, SideRight},
		{2, ArchUpper, SideLeft},
		{3, ArchLower, SideLeft},
		{4, ArchLower, SideRight},
	}
	deciduousQuadrants = []quadrant{
		{5, ArchUpper, SideRight},
		{6, ArchUpper, SideLeft},
		{7, ArchLower, SideLeft},
		{8, ArchLower, SideRight},
	}
)

var (
	all    []Tooth
	byCode map[string]Tooth
)

func init() {
	order := 0
	add := func(kind string, quads []quadrant, upper, lower []position) {
		for _, q := range quads {
			positions := upper
			if q.arch == ArchLower {
				positions = lower
			}
			for _, p := range positions {
				order++
				t := Tooth{
					Code:       fmt.Sprintf("%d%d", q.digit, p.digit),
					Kind:       kind,
					Arch:       q.arch,
					Side:       q.side,
					ToothKind:  p.toothKind,
					Name:       describe(q, p, kind),
					Order:      order,
					EruptStart: p.eruptStart,
					EruptEnd:   p.eruptEnd,
				}
				if p.shedEnd > 0 {
					ss, se := p.shedStart, p.shedEnd
					t.ShedStart, t.ShedEnd = &ss, &se
				}
				all = append(all, t)
			}
		}
	}
	add(KindDeciduous, deciduousQuadrants, deciduousUpper, deciduousLower)
	add(KindPermanent, permanentQuadrants, permanentUpper, permanentLower)

	byCode = make(map[string]Tooth, len(all))
	for _, t := range all {
		byCode[t.Code] = t
	}
}

func describe(q quadrant, p position, kind string) string {
	arch := "Upper"
	if q.arch == ArchLower {
		arch = "Lower"
	}
	side := "right"
	if q.side == SideLeft {
		side = "left"
	}
	if kind == KindDeciduous {
		return fmt.Sprintf("%s %s primary %s", arch, side, p.name)
	}
	return fmt.Sprintf("%s %s %s", arch, side, p.name)
}

// All returns the full catalog sorted by order then code.
func All() []Tooth {
	return List("")
}

// List returns catalog entries, optionally filtered by kind (empty means
// all), sorted by order then code.
func List(kind string) []Tooth {
	out := make([]Tooth, 0, len(all))
	for _, t := range all {
		if kind != "" && t.Kind != kind {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// ByCode looks up a tooth by its FDI code.
func ByCode(code string) (Tooth, bool) {
	t, ok := byCode[code]
	return t, ok
}

// Exists reports whether code is a known FDI code.
func Exists(code string) bool {
	_, ok := byCode[code]
	return ok
}
