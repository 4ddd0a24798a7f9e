// internal/chart/chart.go
package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"property-report-bot/internal/models"
	"property-report-bot/internal/ranking"
)

var (
	airbnbColor  = color.RGBA{R: 0xFF, G: 0x5A, B: 0x5F, A: 0xFF}
	bookingColor = color.RGBA{R: 0x00, G: 0x35, B: 0x80, A: 0xFF}
)

const (
	chartWidth    = 10 * vg.Inch
	minHeight     = 4 * vg.Inch
	heightPerRow  = 0.45 * vg.Inch
	subBarHeight  = vg.Length(9) // points
	nameKeepRunes = 17
	nameMaxRunes  = 20
	// Ratings live on a 0-5 scale; the extra 0.5 leaves room for value labels.
	xAxisMax = 5.5
)

// Render draws the ranked properties as grouped horizontal bars (Airbnb and
// Booking sub-ratings per property, rank 1 at the top) and returns the
// encoded PNG. Every call builds its own plot and canvas, so concurrent
// renders never share drawing state.
func Render(ranked []ranking.RankedProperty, title string) ([]byte, error) {
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no entries to chart")
	}

	n := len(ranked)
	names := make([]string, n)
	airbnb := make(plotter.Values, n)
	booking := make(plotter.Values, n)

	// The nominal Y axis puts index 0 at the bottom, so fill the slices in
	// reverse to keep rank 1 on top.
	for i, rp := range ranked {
		idx := n - 1 - i
		names[idx] = displayName(rp.Property)
		airbnb[idx] = ratingOrZero(rp.Property.AirbnbRating())
		booking[idx] = ratingOrZero(rp.Property.BookingRating())
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Rating"
	p.X.Min = 0
	p.X.Max = xAxisMax

	airbnbBars, err := plotter.NewBarChart(airbnb, subBarHeight)
	if err != nil {
		return nil, fmt.Errorf("airbnb bars: %w", err)
	}
	airbnbBars.Horizontal = true
	airbnbBars.Offset = subBarHeight / 2
	airbnbBars.Color = airbnbColor
	airbnbBars.LineStyle.Width = 0

	bookingBars, err := plotter.NewBarChart(booking, subBarHeight)
	if err != nil {
		return nil, fmt.Errorf("booking bars: %w", err)
	}
	bookingBars.Horizontal = true
	bookingBars.Offset = -subBarHeight / 2
	bookingBars.Color = bookingColor
	bookingBars.LineStyle.Width = 0

	p.Add(airbnbBars, bookingBars)
	p.Legend.Add("Airbnb", airbnbBars)
	p.Legend.Add("Booking", bookingBars)
	p.NominalY(names...)

	if labels, err := valueLabels(airbnb, booking); err == nil && labels != nil {
		p.Add(labels)
	}

	height := heightPerRow * vg.Length(n)
	if height < minHeight {
		height = minHeight
	}

	canvas := vgimg.New(chartWidth, height)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// valueLabels annotates each positive bar with its value beside the bar end.
func valueLabels(airbnb, booking plotter.Values) (*plotter.Labels, error) {
	var xys plotter.XYs
	var texts []string

	for i := range airbnb {
		if airbnb[i] > 0 {
			xys = append(xys, plotter.XY{X: airbnb[i] + 0.08, Y: float64(i) + 0.16})
			texts = append(texts, fmt.Sprintf("%.1f", airbnb[i]))
		}
		if booking[i] > 0 {
			xys = append(xys, plotter.XY{X: booking[i] + 0.08, Y: float64(i) - 0.28})
			texts = append(texts, fmt.Sprintf("%.1f", booking[i]))
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}
	return plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
}

func displayName(p models.Record) string {
	name := p.StringField("Unknown", "name")
	if len([]rune(name)) > nameMaxRunes {
		return models.Truncate(name, nameKeepRunes)
	}
	return name
}

func ratingOrZero(v float64, ok bool) float64 {
	if !ok || v < 0 {
		return 0
	}
	return v
}
