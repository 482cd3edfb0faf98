package utils

import (
	"strings"

	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/google/uuid"
)

// UUIDGenerator produces type-prefixed document identifiers. UUIDv7 is used
// so ids sort roughly by creation time; if v7 generation fails the generator
// falls back to a random v4.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a bare UUID string without a type prefix.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// GenerateDocumentID returns a stable, globally unique, type-prefixed
// document id such as "item:018f4e7a-...".
func (g *UUIDGenerator) GenerateDocumentID(t models.DocType) string {
	return string(t) + ":" + g.Generate()
}

// DocTypeFromID extracts the collection tag prefix of a document id.
// Returns false when the id carries no recognized prefix.
func DocTypeFromID(id string) (models.DocType, bool) {
	prefix, _, found := strings.Cut(id, ":")
	if !found {
		return "", false
	}

	t := models.DocType(prefix)
	if _, ok := models.CollectionByType(t); !ok {
		return "", false
	}
	return t, true
}
