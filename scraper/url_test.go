package scraper

import (
	"testing"

	"listing-optimizer/errs"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.ebay.com/itm/123456789012", "https://www.ebay.com/itm/123456789012"},
		{"http://ebay.com/itm/123456789012?hash=item1c", "https://www.ebay.com/itm/123456789012"},
		{"  https://WWW.EBAY.CO.UK/itm/Some-Slug-Here/334455667788#desc ", "https://www.ebay.co.uk/itm/334455667788"},
		{"https://www.ebay.de/itm/123456789/", "https://www.ebay.de/itm/123456789"},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.raw)
		if err != nil {
			t.Errorf("NormalizeURL(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeURLRejects(t *testing.T) {
	bad := []string{
		"",
		"ftp://www.ebay.com/itm/123456789012",
		"https://www.example.com/itm/123456789012",
		"https://www.ebay.com/sch/i.html?_nkw=iphone",
		"https://www.ebay.com/itm/12345",
		"https://user:pw@www.ebay.com/itm/123456789012",
		"https://www.ebay.com:8443/itm/123456789012",
		"https://evil-ebay.com/itm/123456789012",
	}
	for _, raw := range bad {
		_, err := NormalizeURL(raw)
		if !errs.Is(err, errs.InvalidInput) {
			t.Errorf("NormalizeURL(%q): got %v, want InvalidInput", raw, err)
		}
	}
}

func TestUserAgentPoolWraps(t *testing.T) {
	p := NewUserAgentPool([]string{"a", "b", "c"})
	want := []string{"a", "b", "c", "a", "b"}
	for i, w := range want {
		if got := p.Next(); got != w {
			t.Errorf("Next #%d: got %q, want %q", i, got, w)
		}
	}
	if NewUserAgentPool(nil).Next() != DefaultUserAgents[0] {
		t.Error("empty pool should fall back to defaults")
	}
}
