package querybuilder

import (
	"net/url"
	"strings"
	"testing"

	"github.com/aleister1102/motosearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchURLs_EmptyFilters(t *testing.T) {
	targets := BuildSearchURLs(models.SearchFilters{})

	require.Len(t, targets, 2)
	assert.Equal(t, models.SourceAutoScout24, targets[0].Source)
	assert.Equal(t, AutoScout24BaseURL, targets[0].URL)
	assert.Equal(t, models.SourceSubito, targets[1].Source)
	assert.Equal(t, SubitoBaseURL, targets[1].URL)
	assert.NotContains(t, targets[0].URL, "?")
	assert.NotContains(t, targets[1].URL, "?")
}

func TestBuildSearchURLs_HondaExample(t *testing.T) {
	targets := BuildSearchURLs(models.SearchFilters{Brand: "Honda", MinPrice: 1000, MaxPrice: 5000})

	require.Len(t, targets, 2)
	assert.Equal(t, "https://www.autoscout24.it/lista/moto?make=Honda&pricefrom=1000&priceto=5000", targets[0].URL)
	assert.Equal(t, "https://www.subito.it/annunci-italia/vendita/moto-e-scooter/?ps=1000&pe=5000&q=Honda", targets[1].URL)
}

func TestBuildSearchURLs_FullFiltersKeepParamOrder(t *testing.T) {
	filters := models.SearchFilters{
		Brand:      "Ducati",
		Model:      "Monster",
		MinPrice:   4999.5,
		MaxPrice:   8000,
		MinYear:    2015,
		MaxYear:    2020,
		MaxMileage: 30000,
		Region:     "Lombardia",
	}

	targets := BuildSearchURLs(filters)

	assert.Equal(t,
		"https://www.autoscout24.it/lista/moto?make=Ducati&model=Monster&pricefrom=4999.5&priceto=8000&fregfrom=2015&fregto=2020",
		targets[0].URL)
	assert.Equal(t,
		"https://www.subito.it/annunci-italia/vendita/moto-e-scooter/?ps=4999.5&pe=8000&q=Ducati+Monster",
		targets[1].URL)
}

func TestBuildSearchURLs_IgnoresUnsupportedFilters(t *testing.T) {
	targets := BuildSearchURLs(models.SearchFilters{MaxMileage: 20000, Region: "Lazio"})

	for _, target := range targets {
		assert.NotContains(t, target.URL, "20000")
		assert.NotContains(t, strings.ToLower(target.URL), "lazio")
		assert.NotContains(t, target.URL, "?")
	}
}

func TestBuildSearchURLs_SubitoQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters models.SearchFilters
		wantQ   string
		hasQ    bool
	}{
		{name: "brand and model", filters: models.SearchFilters{Brand: "Yamaha", Model: "MT-07"}, wantQ: "Yamaha MT-07", hasQ: true},
		{name: "brand only", filters: models.SearchFilters{Brand: "Yamaha"}, wantQ: "Yamaha", hasQ: true},
		{name: "model only", filters: models.SearchFilters{Model: "MT-07"}, hasQ: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets := BuildSearchURLs(tt.filters)
			parsed, err := url.Parse(targets[1].URL)
			require.NoError(t, err)

			q, ok := parsed.Query()["q"]
			assert.Equal(t, tt.hasQ, ok)
			if tt.hasQ {
				assert.Equal(t, []string{tt.wantQ}, q)
			}
		})
	}
}

func TestBuildSearchURLs_EncodesValues(t *testing.T) {
	targets := BuildSearchURLs(models.SearchFilters{Brand: "Moto Guzzi", Model: "V7 & co"})

	assert.Equal(t, "https://www.autoscout24.it/lista/moto?make=Moto+Guzzi&model=V7+%26+co", targets[0].URL)
	assert.Equal(t, "https://www.subito.it/annunci-italia/vendita/moto-e-scooter/?q=Moto+Guzzi+V7+%26+co", targets[1].URL)
}

func TestBuildSearchURLs_IsPure(t *testing.T) {
	filters := models.SearchFilters{Brand: "KTM", MinYear: 2019}
	original := filters

	first := BuildSearchURLs(filters)
	second := BuildSearchURLs(filters)

	assert.Equal(t, first, second)
	assert.Equal(t, original, filters)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1000", formatNumber(1000))
	assert.Equal(t, "4999.5", formatNumber(4999.5))
	assert.Equal(t, "1000000", formatNumber(1e6))
	assert.Equal(t, "0.25", formatNumber(0.25))
}
