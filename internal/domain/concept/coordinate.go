package concept

import "strings"

// Coordinate is the identity of a concept.  It is compared by value and used
// directly as a map key.
type Coordinate struct {
	SourceID string `json:"sourceId"`
	Source   string `json:"source"`
}

func (c Coordinate) IsZero() bool {
	return c.SourceID == "" && c.Source == ""
}

// HasPrefix reports whether the source id starts with prefix.
func (c Coordinate) HasPrefix(prefix string) bool {
	return strings.HasPrefix(c.SourceID, prefix)
}

func (c Coordinate) String() string {
	return c.SourceID + "@" + c.Source
}

// Less orders coordinates by source id, then source.
func (c Coordinate) Less(o Coordinate) bool {
	if c.SourceID != o.SourceID {
		return c.SourceID < o.SourceID
	}
	return c.Source < o.Source
}

// Coordinates is the full output form of a concept identity.  The original
// pair records where the data was first read from; identity is Key().
type Coordinates struct {
	SourceID       string `json:"sourceId"`
	Source         string `json:"source"`
	OriginalID     string `json:"originalId,omitempty"`
	OriginalSource string `json:"originalSource,omitempty"`
}

// NewCoordinates returns coordinates whose original pair equals the source
// pair.
func NewCoordinates(sourceID, source string) Coordinates {
	return Coordinates{SourceID: sourceID, Source: source, OriginalID: sourceID, OriginalSource: source}
}

func (c Coordinates) Key() Coordinate {
	return Coordinate{SourceID: c.SourceID, Source: c.Source}
}

//Personal.AI order the ending
