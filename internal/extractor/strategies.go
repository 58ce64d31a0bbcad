package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/aleister1102/motosearch/internal/models"
)

const (
	autoScoutMaxRecords = 10
	subitoMaxRecords    = 10
	fallbackMaxRecords  = 5
)

// Page is the input handed to a Strategy
type Page struct {
	Content string
	Link    string
	Source  models.Source
}

// Strategy turns page content into candidate records. Candidates may lack a
// title or price; the extractor filters them afterwards.
type Strategy func(page Page) []models.ListingRecord

// AutoScout24Strategy pairs the i-th capitalised title with the i-th price in the page
func AutoScout24Strategy(page Page) []models.ListingRecord {
	titles := autoScoutTitlePattern.FindAllString(page.Content, -1)
	prices := pricePattern.FindAllString(page.Content, -1)

	n := min(len(titles), len(prices), autoScoutMaxRecords)
	records := make([]models.ListingRecord, 0, n)
	for i := 0; i < n; i++ {
		title := strings.TrimSpace(titles[i])
		parts := strings.Fields(title)

		var brand, model string
		if len(parts) > 0 {
			brand = parts[0]
			model = strings.Join(parts[1:], " ")
		}

		records = append(records, models.ListingRecord{
			Title:  title,
			Price:  prices[i],
			Brand:  brand,
			Model:  model,
			Link:   page.Link,
			Source: page.Source,
		})
	}
	return records
}

// SubitoStrategy emits one record per priced line mentioning moto or scooter
func SubitoStrategy(page Page) []models.ListingRecord {
	var records []models.ListingRecord
	for _, line := range nonBlankLines(page.Content) {
		if len(records) >= subitoMaxRecords {
			break
		}
		if !strings.Contains(line, currencySymbol) {
			continue
		}
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "moto") && !strings.Contains(lower, "scooter") {
			continue
		}

		price := findLinePrice(line)
		if price == "" {
			continue
		}

		brand, model := brandAndModel(significantWords(line))
		records = append(records, models.ListingRecord{
			Title:   strings.TrimSpace(line),
			Price:   price,
			Year:    findYear(line),
			Mileage: findLineMileage(line),
			Brand:   brand,
			Model:   model,
			Link:    page.Link,
			Source:  page.Source,
		})
	}
	return records
}

// FallbackStrategy takes the first lines that look like listings, filling gaps with N/A
func FallbackStrategy(page Page) []models.ListingRecord {
	var records []models.ListingRecord
	for _, line := range nonBlankLines(page.Content) {
		if len(records) >= fallbackMaxRecords {
			break
		}
		if !strings.Contains(line, currencySymbol) && findYear(line) == "" {
			continue
		}
		if n := utf8.RuneCountInString(line); n <= fallbackMinRunes || n >= fallbackMaxRunes {
			continue
		}

		price := findLinePrice(line)
		if price == "" {
			price = notAvailable
		}
		brand, model := brandAndModel(significantWords(line))
		if brand == "" {
			brand = notAvailable
		}
		if model == "" {
			model = notAvailable
		}

		records = append(records, models.ListingRecord{
			Title:  strings.TrimSpace(line),
			Price:  price,
			Year:   findYear(line),
			Brand:  brand,
			Model:  model,
			Link:   page.Link,
			Source: page.Source,
		})
	}
	return records
}
