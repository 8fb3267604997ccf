package care

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCareType = errors.New("unknown care type")

type CareType string

const (
	CareTypeFeed    CareType = "FEED"
	CareTypeWater   CareType = "WATER"
	CareTypeTreat   CareType = "TREAT"
	CareTypePlay    CareType = "PLAY"
	CareTypeNails   CareType = "NAILS"
	CareTypeBrush   CareType = "BRUSH"
	CareTypeLitter  CareType = "LITTER"
	CareTypeVaccine CareType = "VACCINE"
)

// AllCareTypes es el conjunto cerrado, en orden de declaración.
var AllCareTypes = []CareType{
	CareTypeFeed,
	CareTypeWater,
	CareTypeTreat,
	CareTypePlay,
	CareTypeNails,
	CareTypeBrush,
	CareTypeLitter,
	CareTypeVaccine,
}

func (t CareType) Valid() bool {
	switch t {
	case CareTypeFeed, CareTypeWater, CareTypeTreat, CareTypePlay,
		CareTypeNails, CareTypeBrush, CareTypeLitter, CareTypeVaccine:
		return true
	}
	return false
}

// ParseCareType acepta mayúsculas/minúsculas; cualquier otro valor es error.
func ParseCareType(s string) (CareType, error) {
	t := CareType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCareType, s)
	}
	return t, nil
}

// Counts tiene un campo por CareType: un tipo sin eventos vale 0, nunca "ausente".
type Counts struct {
	Feed    int `json:"FEED"`
	Water   int `json:"WATER"`
	Treat   int `json:"TREAT"`
	Play    int `json:"PLAY"`
	Nails   int `json:"NAILS"`
	Brush   int `json:"BRUSH"`
	Litter  int `json:"LITTER"`
	Vaccine int `json:"VACCINE"`
}

func (c Counts) Get(t CareType) int {
	if p := c.field(t); p != nil {
		return *p
	}
	return 0
}

func (c *Counts) Inc(t CareType) {
	if p := c.field(t); p != nil {
		*p++
	}
}

func (c *Counts) field(t CareType) *int {
	switch t {
	case CareTypeFeed:
		return &c.Feed
	case CareTypeWater:
		return &c.Water
	case CareTypeTreat:
		return &c.Treat
	case CareTypePlay:
		return &c.Play
	case CareTypeNails:
		return &c.Nails
	case CareTypeBrush:
		return &c.Brush
	case CareTypeLitter:
		return &c.Litter
	case CareTypeVaccine:
		return &c.Vaccine
	}
	return nil
}

// Flags es el equivalente booleano de Counts (needs / allowed).
type Flags struct {
	Feed    bool `json:"FEED"`
	Water   bool `json:"WATER"`
	Treat   bool `json:"TREAT"`
	Play    bool `json:"PLAY"`
	Nails   bool `json:"NAILS"`
	Brush   bool `json:"BRUSH"`
	Litter  bool `json:"LITTER"`
	Vaccine bool `json:"VACCINE"`
}

func (f Flags) Get(t CareType) bool {
	if p := f.field(t); p != nil {
		return *p
	}
	return false
}

func (f *Flags) Set(t CareType, v bool) {
	if p := f.field(t); p != nil {
		*p = v
	}
}

func (f *Flags) field(t CareType) *bool {
	switch t {
	case CareTypeFeed:
		return &f.Feed
	case CareTypeWater:
		return &f.Water
	case CareTypeTreat:
		return &f.Treat
	case CareTypePlay:
		return &f.Play
	case CareTypeNails:
		return &f.Nails
	case CareTypeBrush:
		return &f.Brush
	case CareTypeLitter:
		return &f.Litter
	case CareTypeVaccine:
		return &f.Vaccine
	}
	return nil
}
