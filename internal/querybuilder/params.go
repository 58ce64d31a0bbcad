package querybuilder

import (
	"net/url"
	"strconv"
	"strings"
)

// orderedParams is a form-encoded parameter list that keeps insertion order.
// url.Values sorts keys on Encode, and the search sites expect a fixed order.
type orderedParams struct {
	keys   []string
	values []string
}

func (p *orderedParams) add(key, value string) {
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
}

func (p *orderedParams) addString(key, value string) {
	if value == "" {
		return
	}
	p.add(key, value)
}

func (p *orderedParams) addFloat(key string, value float64) {
	if value == 0 {
		return
	}
	p.add(key, formatNumber(value))
}

func (p *orderedParams) addInt(key string, value int) {
	if value == 0 {
		return
	}
	p.add(key, strconv.Itoa(value))
}

func (p *orderedParams) encode() string {
	var sb strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.values[i]))
	}
	return sb.String()
}

// withQuery appends the encoded params to base, or returns base untouched when empty
func (p *orderedParams) withQuery(base string) string {
	if len(p.keys) == 0 {
		return base
	}
	return base + "?" + p.encode()
}

// formatNumber renders a number as a plain decimal without exponent or grouping
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
