package iiif_test

import (
	"testing"

	"github.com/perseus-aa/manifest-compiler/iiif"
)

func TestImageURL(t *testing.T) {
	got := iiif.ImageURL("https://iiif.example/iiif/3/img_1/", "/full/pct:20/0/default.png")
	want := "https://iiif.example/iiif/3/img_1/full/pct:20/0/default.png"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := iiif.InfoURL("https://iiif.example/iiif/3/img_1"); got != "https://iiif.example/iiif/3/img_1/info.json" {
		t.Errorf("InfoURL = %q", got)
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"full/max/0/default.png":  "image/png",
		"full/max/0/default.jpg":  "image/jpeg",
		"full/max/0/default.jpeg": "image/jpeg",
		"full/max/0/default":      "image/jpeg",
	}
	for tmpl, want := range tests {
		if got := iiif.FormatOf(tmpl); got != want {
			t.Errorf("FormatOf(%q) = %q, want %q", tmpl, got, want)
		}
	}
}

func TestRebase(t *testing.T) {
	ns := "https://iiif.perseus.tufts.edu/iiif/3/"
	tests := []struct {
		name, iri, base, want string
	}{
		{"inside namespace", ns + "img_1", "https://iiif-dev.perseus.tufts.edu/iiif/3", "https://iiif-dev.perseus.tufts.edu/iiif/3/img_1"},
		{"trailing slash base", ns + "img_1", "http://localhost:8182/iiif/3/", "http://localhost:8182/iiif/3/img_1"},
		{"outside namespace", "https://other.example/img_1", "http://localhost", "https://other.example/img_1"},
		{"empty base", ns + "img_1", "", ns + "img_1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := iiif.Rebase(tc.iri, ns, tc.base); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTemplatesWithDefaults(t *testing.T) {
	tm := iiif.Templates{Small: "full/400,/0/default.jpg"}.WithDefaults()
	if tm.Thumbnail != iiif.DefaultThumbnailTemplate {
		t.Errorf("Thumbnail = %q", tm.Thumbnail)
	}
	if tm.Small != "full/400,/0/default.jpg" {
		t.Errorf("Small overridden: %q", tm.Small)
	}
	if tm.Full != iiif.DefaultFullTemplate {
		t.Errorf("Full = %q", tm.Full)
	}
}
