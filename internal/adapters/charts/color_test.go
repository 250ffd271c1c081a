package charts

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func TestParseColor(t *testing.T) {
	convey.Convey("Given palette colours", t, func() {
		convey.So(parseColor("rgba(255, 99, 132, 1)"), convey.ShouldResemble, drawing.Color{R: 255, G: 99, B: 132, A: 255})
		convey.So(parseColor("rgb(54, 162, 235)"), convey.ShouldResemble, drawing.Color{R: 54, G: 162, B: 235, A: 255})
		convey.So(parseColor(" #4bc0c0 "), convey.ShouldResemble, drawing.Color{R: 0x4b, G: 0xc0, B: 0xc0, A: 255})
		convey.So(parseColor("teal"), convey.ShouldResemble, drawing.ColorTeal)
	})

	convey.Convey("Unknown colours fall back to blue", t, func() {
		convey.So(parseColor("chartreuse-ish"), convey.ShouldResemble, chart.ColorBlue)
		convey.So(parseColor(""), convey.ShouldResemble, chart.ColorBlue)
		convey.So(parseColor("#12345"), convey.ShouldResemble, chart.ColorBlue)
	})
}
