package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/aleister1102/motosearch/internal/models"
)

// Actions selected by the command line
const (
	ActionSearch      = "search"
	ActionSetKey      = "set-key"
	ActionValidateKey = "validate-key"
)

type AppFlags struct {
	GlobalConfigFile string
	SetKey           string
	ValidateKey      string
	Filters          models.SearchFilters
}

// Action reports what the invocation asks for; key management wins over search
func (f AppFlags) Action() string {
	switch {
	case f.SetKey != "":
		return ActionSetKey
	case f.ValidateKey != "":
		return ActionValidateKey
	default:
		return ActionSearch
	}
}

func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("motosearch", flag.ContinueOnError)
	fs.SetOutput(output)

	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	setKey := fs.String("set-key", "", "Validate a Firecrawl API key and store it")
	validateKey := fs.String("validate-key", "", "Check a Firecrawl API key without storing it")

	brand := fs.String("brand", "", "Motorcycle brand, e.g. Honda")
	brandAlias := fs.String("b", "", "Alias for -brand")
	model := fs.String("model", "", "Motorcycle model, e.g. CBR")
	minPrice := fs.Float64("min-price", 0, "Minimum price in euro")
	maxPrice := fs.Float64("max-price", 0, "Maximum price in euro")
	minYear := fs.Int("min-year", 0, "Minimum registration year")
	maxYear := fs.Int("max-year", 0, "Maximum registration year")
	maxKm := fs.Float64("max-km", 0, "Maximum mileage in km")
	region := fs.String("region", "", "Region, e.g. Lombardia")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}
	if fs.NArg() > 0 {
		return AppFlags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	flags := AppFlags{
		GlobalConfigFile: *globalConfigFile,
		SetKey:           *setKey,
		ValidateKey:      *validateKey,
		Filters: models.SearchFilters{
			Brand:      *brand,
			Model:      *model,
			MinPrice:   *minPrice,
			MaxPrice:   *maxPrice,
			MinYear:    *minYear,
			MaxYear:    *maxYear,
			MaxMileage: *maxKm,
			Region:     *region,
		},
	}

	if flags.GlobalConfigFile == "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}
	if flags.Filters.Brand == "" {
		flags.Filters.Brand = *brandAlias
	}

	if flags.SetKey != "" && flags.ValidateKey != "" {
		return AppFlags{}, fmt.Errorf("-set-key and -validate-key cannot be combined")
	}

	return flags, nil
}
