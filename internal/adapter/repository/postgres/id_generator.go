package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID account ids. ULIDs sort by creation time,
// which keeps event pages for recent accounts close together on disk.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
