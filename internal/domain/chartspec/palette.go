package chartspec

// Palette colours.
const (
	ColorBlue   = "rgba(54, 162, 235, 0.7)"
	ColorRed    = "rgba(255, 99, 132, 0.7)"
	ColorTeal   = "rgba(75, 192, 192, 0.7)"
	ColorYellow = "rgba(255, 206, 86, 0.7)"
	ColorPurple = "rgba(153, 102, 255, 0.7)"
	ColorOrange = "rgba(255, 159, 64, 0.7)"
	ColorGrey   = "rgba(199, 199, 199, 0.7)"
)

var palette = [...]string{ColorBlue, ColorRed, ColorTeal, ColorYellow, ColorPurple, ColorOrange, ColorGrey}

// Palette returns n colours from the fixed palette, repeating when n
// exceeds its size.
func Palette(n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}
