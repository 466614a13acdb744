package card

import (
	"strings"
	"testing"
)

func Test_truncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{name: "short stays", s: "Jane", max: 17, want: "Jane"},
		{name: "exact stays", s: "12345", max: 5, want: "12345"},
		{name: "long is cut", s: "Jane Wanjiru Mwangi", max: 17, want: "Jane Wanjiru Mwan"},
		{name: "empty", s: "", max: 5, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.s, tt.max); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}
}

func Test_truncateEllipsis(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{name: "short stays", s: "EduID Institute", max: 50, want: "EduID Institute"},
		{name: "long gets ellipsis", s: strings.Repeat("A", 60), max: 50, want: strings.Repeat("A", 47) + "..."},
		{name: "tiny budget", s: "ABCDE", max: 3, want: "ABC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateEllipsis(tt.s, tt.max)
			if got != tt.want {
				t.Errorf("truncateEllipsis(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
			if len([]rune(got)) > tt.max {
				t.Errorf("result %q exceeds budget %d", got, tt.max)
			}
		})
	}
}

func TestCardField_Renderable(t *testing.T) {
	tests := []struct {
		name string
		fld  CardField
		want bool
	}{
		{name: "name only", fld: CardField{FullName: "Jane"}, want: true},
		{name: "reg no only", fld: CardField{RegNo: "SCE-100-2024"}, want: true},
		{name: "both empty", fld: CardField{}, want: false},
		{name: "whitespace only", fld: CardField{FullName: "   "}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fld.Renderable(); got != tt.want {
				t.Errorf("Renderable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCardField_normalized(t *testing.T) {
	fld := CardField{
		FullName: "  Jane Wanjiru Mwangi ",
		RegNo:    "SCE-100-2024",
	}.normalized()

	if fld.FullName != "Jane Wanjiru Mwangi" {
		t.Errorf("FullName = %q, want trimmed", fld.FullName)
	}
	if fld.SchoolName != "SCHOOL NAME" {
		t.Errorf("SchoolName = %q, want default placeholder", fld.SchoolName)
	}
	if fld.ColorHex != "#0b5394" {
		t.Errorf("ColorHex = %q, want default", fld.ColorHex)
	}
	// ID number falls back to the registration number
	if fld.IDNumber != "SCE-100-2024" {
		t.Errorf("IDNumber = %q, want reg no fallback", fld.IDNumber)
	}
}

func Test_orNA(t *testing.T) {
	if got := orNA(""); got != "N/A" {
		t.Errorf("orNA(\"\") = %q", got)
	}
	if got := orNA("O+"); got != "O+" {
		t.Errorf("orNA(\"O+\") = %q", got)
	}
}
