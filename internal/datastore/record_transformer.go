package datastore

import (
	"time"

	"github.com/aleister1102/motosearch/internal/models"
)

// ToParquetListing converts a listing into its archived row
func ToParquetListing(r models.ListingRecord, sessionID string, position int, searchedAt time.Time) models.ParquetListingRecord {
	return models.ParquetListingRecord{
		SessionID:  sessionID,
		Position:   int32(position),
		Title:      r.Title,
		Price:      r.Price,
		Year:       StringPtrOrNil(r.Year),
		Mileage:    StringPtrOrNil(r.Mileage),
		Brand:      r.Brand,
		Model:      r.Model,
		Location:   StringPtrOrNil(r.Location),
		Image:      StringPtrOrNil(r.Image),
		Link:       r.Link,
		Source:     r.Source.String(),
		SearchedAt: searchedAt.UnixMilli(),
	}
}

// FromParquetListing converts an archived row back into a listing
func FromParquetListing(p models.ParquetListingRecord) models.ListingRecord {
	return models.ListingRecord{
		Title:    p.Title,
		Price:    p.Price,
		Year:     StringOrEmpty(p.Year),
		Mileage:  StringOrEmpty(p.Mileage),
		Brand:    p.Brand,
		Model:    p.Model,
		Location: StringOrEmpty(p.Location),
		Image:    StringOrEmpty(p.Image),
		Link:     p.Link,
		Source:   models.Source(p.Source),
	}
}

// StringPtrOrNil returns nil for the empty string
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringOrEmpty dereferences p, treating nil as ""
func StringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
