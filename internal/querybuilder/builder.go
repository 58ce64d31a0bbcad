// Package querybuilder turns search filters into per-source search URLs.
package querybuilder

import (
	"github.com/aleister1102/motosearch/internal/models"
)

const (
	AutoScout24BaseURL = "https://www.autoscout24.it/lista/moto"
	SubitoBaseURL      = "https://www.subito.it/annunci-italia/vendita/moto-e-scooter/"
)

// BuildSearchURLs returns one target per supported source, AutoScout24 first.
// Mileage and region have no query mapping on either site and are ignored.
func BuildSearchURLs(filters models.SearchFilters) []models.SourceTarget {
	return []models.SourceTarget{
		{Source: models.SourceAutoScout24, URL: buildAutoScout24URL(filters)},
		{Source: models.SourceSubito, URL: buildSubitoURL(filters)},
	}
}

func buildAutoScout24URL(f models.SearchFilters) string {
	var p orderedParams
	p.addString("make", f.Brand)
	p.addString("model", f.Model)
	p.addFloat("pricefrom", f.MinPrice)
	p.addFloat("priceto", f.MaxPrice)
	p.addInt("fregfrom", f.MinYear)
	p.addInt("fregto", f.MaxYear)
	return p.withQuery(AutoScout24BaseURL)
}

func buildSubitoURL(f models.SearchFilters) string {
	var p orderedParams
	p.addFloat("ps", f.MinPrice)
	p.addFloat("pe", f.MaxPrice)
	p.addString("q", subitoQuery(f))
	return p.withQuery(SubitoBaseURL)
}

// subitoQuery is "brand model" when both are set, brand alone otherwise.
// A model without a brand is dropped.
func subitoQuery(f models.SearchFilters) string {
	switch {
	case f.Brand != "" && f.Model != "":
		return f.Brand + " " + f.Model
	case f.Brand != "":
		return f.Brand
	default:
		return ""
	}
}
