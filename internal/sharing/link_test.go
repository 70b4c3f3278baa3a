package sharing

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLink(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		body  string
		want  string
	}{
		{name: "bare ten digits", phone: "9876543210", body: "hi", want: "https://wa.me/919876543210?text=hi"},
		{name: "international with separators", phone: "+1 234-567-8901", body: "hi", want: "https://wa.me/12345678901?text=hi"},
		{name: "already has country code", phone: "447911123456", body: "hi", want: "https://wa.me/447911123456?text=hi"},
		{name: "spaces encoded as %20", phone: "9876543210", body: "two photos", want: "https://wa.me/919876543210?text=two%20photos"},
		{name: "newline and ampersand", phone: "9876543210", body: "a&b\nc", want: "https://wa.me/919876543210?text=a%26b%0Ac"},
		{name: "sub-delimiters escaped", phone: "9876543210", body: "photo(s) with you!", want: "https://wa.me/919876543210?text=photo%28s%29%20with%20you%21"},
		{name: "plus sign kept distinct from space", phone: "9876543210", body: "1+1 = 2", want: "https://wa.me/919876543210?text=1%2B1%20%3D%202"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := GenerateLink(tt.phone, tt.body)
			require.NotNil(t, link)
			assert.Equal(t, tt.want, link.URI)
		})
	}
}

func TestGenerateLink_EmptyPhone(t *testing.T) {
	assert.Nil(t, GenerateLink("", "hi"))
	assert.Nil(t, GenerateLink(" - ", "hi"))
}

func TestLinkGenerator_ConfiguredCountryCode(t *testing.T) {
	g := NewLinkGenerator("+44")
	link := g.Generate("7911123456", "hi")
	require.NotNil(t, link)
	assert.Equal(t, "https://wa.me/447911123456?text=hi", link.URI)
}

func TestLinkGenerator_DefaultsWhenBlank(t *testing.T) {
	assert.Equal(t, DefaultCountryCode, NewLinkGenerator("").CountryCode)
}

func TestNormalizePhone_TenDigitsWithSeparators(t *testing.T) {
	g := NewLinkGenerator(DefaultCountryCode)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		var raw strings.Builder
		digits := 0
		for digits < 10 {
			switch rng.Intn(5) {
			case 0:
				raw.WriteByte(' ')
			case 1:
				raw.WriteByte('-')
			default:
				raw.WriteByte(byte('0' + rng.Intn(10)))
				digits++
			}
		}
		phone := raw.String()

		got := g.NormalizePhone(phone)
		assert.True(t, strings.HasPrefix(got, "91"), "phone %q normalized to %q", phone, got)
		assert.NotContains(t, got, " ", fmt.Sprintf("phone %q", phone))
		assert.NotContains(t, got, "-", fmt.Sprintf("phone %q", phone))
		assert.Len(t, got, 12)
	}
}
