package pdftext_test

import (
	"reflect"
	"testing"

	"github.com/raysh454/rawdata/internal/pdftext"
)

func TestShowText_Operators(t *testing.T) {
	t.Parallel()
	content := []byte(`BT /F1 12 Tf 72 720 Td (Hello \(world\)) Tj ET
BT [(Ker) -30 (ning) -400 (gap)] TJ ET
BT (next line) ' 1 2 (quoted) " ET
% (commented) Tj
BT <48656C6C6F> Tj <FEFF00E9007400E9> Tj ET
BT (nested (parens) ok) Tj (oct\101l) Tj ET`)

	got := pdftext.ShowText(content)
	want := []string{
		"Hello (world)",
		"Kerning gap",
		"next line",
		"quoted",
		"Hello",
		"\u00e9t\u00e9",
		"nested (parens) ok",
		"octAl",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ShowText =\n%q\nwant\n%q", got, want)
	}
}

func TestShowText_SkipsInlineImages(t *testing.T) {
	t.Parallel()
	content := []byte("q BI /W 2 /H 1 /BPC 8 /CS /G ID \x00(\xff) Tj\x01 EI Q BT (after) Tj ET")
	got := pdftext.ShowText(content)
	if len(got) != 1 || got[0] != "after" {
		t.Fatalf("ShowText = %q", got)
	}
}

func TestShowText_IgnoresDictionaries(t *testing.T) {
	t.Parallel()
	content := []byte(`/P <</MCID 0>> BDC BT (tagged) Tj ET EMC`)
	got := pdftext.ShowText(content)
	if len(got) != 1 || got[0] != "tagged" {
		t.Fatalf("ShowText = %q", got)
	}
}

func TestNormalizePage(t *testing.T) {
	t.Parallel()
	got := pdftext.NormalizePage([]string{"  Caf", "\u00e9 ", "\n\tmenu  "})
	if got != "Caf \u00e9 menu" {
		t.Fatalf("NormalizePage = %q", got)
	}
	if got := pdftext.NormalizePage([]string{"Cafe\u0301"}); got != "Caf\u00e9" {
		t.Errorf("NFC = %q", got)
	}
}
