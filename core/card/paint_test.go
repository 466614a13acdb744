package card

import "testing"

func Test_hexToRGB(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want rgb
	}{
		{name: "with hash", hex: "#0b5394", want: rgb{11, 83, 148}},
		{name: "without hash", hex: "ff0000", want: rgb{255, 0, 0}},
		{name: "padded", hex: "  #ffffff ", want: rgb{255, 255, 255}},
		{name: "malformed falls back", hex: "blue", want: colNavy},
		{name: "short falls back", hex: "#fff", want: colNavy},
		{name: "empty falls back", hex: "", want: colNavy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hexToRGB(tt.hex); got != tt.want {
				t.Errorf("hexToRGB(%q) = %v, want %v", tt.hex, got, tt.want)
			}
		})
	}
}
