package extractor

import (
	"strings"

	"github.com/aleister1102/motosearch/internal/models"
)

// ClassifySource maps a page URL to its source tag. Unknown hosts are treated as AutoScout24.
func ClassifySource(sourceURL string) models.Source {
	switch {
	case strings.Contains(sourceURL, "subito.it"):
		return models.SourceSubito
	case strings.Contains(sourceURL, "ebay"):
		return models.SourceEbayMotors
	default:
		return models.SourceAutoScout24
	}
}
