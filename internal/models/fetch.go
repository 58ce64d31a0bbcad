package models

// Content formats understood by the fetch service
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ScrapeOptions configures a single page fetch
type ScrapeOptions struct {
	Formats     []string `json:"formats,omitempty"`
	IncludeTags []string `json:"includeTags,omitempty"`
	ExcludeTags []string `json:"excludeTags,omitempty"`
}

// ScrapeResponse is the content returned by a fetch
type ScrapeResponse struct {
	Success  bool           `json:"success"`
	Markdown string         `json:"markdown,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Content returns the markdown if present, else the HTML, else ""
func (r *ScrapeResponse) Content() string {
	if r == nil {
		return ""
	}
	if r.Markdown != "" {
		return r.Markdown
	}
	return r.HTML
}

// WantsFormat reports whether opts requests the given format; no formats means markdown only
func (o ScrapeOptions) WantsFormat(format string) bool {
	if len(o.Formats) == 0 {
		return format == FormatMarkdown
	}
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}
