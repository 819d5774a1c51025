package product

import (
	"strings"
	"testing"

	"github.com/gocql/gocql"
)

func TestMakeSlug(t *testing.T) {
	id, _ := gocql.ParseUUID("a1b2c3d4-0000-0000-0000-000000000000")

	cases := []struct {
		title string
		want  string
	}{
		{"Vintage Denim Jacket", "vintage-denim-jacket-a1b2c3d4"},
		{"  Nike Air Max 97  ", "nike-air-max-97-a1b2c3d4"},
		{"Robe d'été ++ (neuve)", "robe-dt-neuve-a1b2c3d4"},
		{"___", "-a1b2c3d4"},
	}

	for _, tc := range cases {
		got := makeSlug(tc.title, id)
		if got != tc.want {
			t.Errorf("makeSlug(%q) = %q, attendu %q", tc.title, got, tc.want)
		}
	}
}

func TestMakeSlugAlwaysLowercaseASCII(t *testing.T) {
	id := gocql.TimeUUID()
	slug := makeSlug("ÉTÉ 2024 — Collection ÊTRE", id)

	if slug != strings.ToLower(slug) {
		t.Errorf("slug contient des majuscules : %q", slug)
	}
	for _, r := range slug {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		if !ok {
			t.Errorf("caractère inattendu %q dans le slug %q", r, slug)
		}
	}
}
