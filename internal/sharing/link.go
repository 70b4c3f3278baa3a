package sharing

import (
	"net/url"
	"strings"
)

// DefaultCountryCode is prefixed to bare ten digit numbers.
const DefaultCountryCode = "91"

const whatsAppBaseURL = "https://wa.me/"

// Link is an externally addressable messaging deep link. It is derived on
// demand and never persisted.
type Link struct {
	URI string `json:"uri"`
}

func (l *Link) String() string {
	if l == nil {
		return ""
	}
	return l.URI
}

// LinkGenerator builds wa.me links. The country code heuristic is not an
// E.164 parser: a ten digit number is assumed to be local to CountryCode.
type LinkGenerator struct {
	CountryCode string
}

func NewLinkGenerator(countryCode string) *LinkGenerator {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return &LinkGenerator{CountryCode: strings.TrimPrefix(countryCode, "+")}
}

// Generate returns nil when phone is empty.
func (g *LinkGenerator) Generate(phone, messageBody string) *Link {
	normalized := g.NormalizePhone(phone)
	if normalized == "" {
		return nil
	}
	return &Link{URI: whatsAppBaseURL + normalized + "?text=" + encodeMessage(messageBody)}
}

// NormalizePhone strips spaces and hyphens and resolves the country prefix.
func (g *LinkGenerator) NormalizePhone(phone string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	if cleaned == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(cleaned, "+"); ok {
		return rest
	}
	if len(cleaned) == 10 && allDigits(cleaned) {
		return g.CountryCode + cleaned
	}
	return cleaned
}

// GenerateLink uses the default country code.
func GenerateLink(phone, messageBody string) *Link {
	return NewLinkGenerator(DefaultCountryCode).Generate(phone, messageBody)
}

// encodeMessage query-escapes s with spaces as %20 rather than '+'.
// Sub-delimiters such as !'()* are escaped as well.
func encodeMessage(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
