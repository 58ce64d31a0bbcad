package models

// Source identifies the classifieds site a listing came from
type Source string

const (
	SourceAutoScout24 Source = "AutoScout24"
	SourceSubito      Source = "Subito"
	// SourceEbayMotors is recognised by the extractor but has no search target yet
	SourceEbayMotors Source = "eBay Motors"
)

// String returns the display tag of the source
func (s Source) String() string {
	return string(s)
}

// SourceTarget pairs a source with the search URL built for it
type SourceTarget struct {
	Source Source `json:"source"`
	URL    string `json:"url"`
}
