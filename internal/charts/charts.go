// Package charts renders category summaries as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"

	"wallet/internal/core"
)

const (
	width     = 1200
	height    = 600
	barWidth  = 60
	headroom  = 1.1
	minHeight = 1.0
)

// ErrMissingGlyphs is returned when the chart font cannot draw a label.
var ErrMissingGlyphs = errors.New("chart font has no glyphs for label")

// LoadFont reads a TrueType font, e.g. a CJK font for Hangul category names.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse chart font %s: %w", path, err)
	}
	return f, nil
}

// RenderCategoryBars draws one bar per category total with font, or with the
// go-chart default font when font is nil. An empty summary renders nothing
// and returns nil. Labels the font cannot draw fail with ErrMissingGlyphs.
func RenderCategoryBars(font *truetype.Font, title string, rows []core.CategorySummary) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if font == nil {
		f, err := chart.GetDefaultFont()
		if err != nil {
			return nil, fmt.Errorf("load default chart font: %w", err)
		}
		font = f
	}

	bars := make([]chart.Value, 0, len(rows))
	top := 0.0
	for _, r := range rows {
		v := float64(r.Total)
		if v > top {
			top = v
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s (%d)", r.Category, r.Count),
			Value: v,
		})
	}
	if err := checkGlyphs(font, title); err != nil {
		return nil, err
	}
	for _, b := range bars {
		if err := checkGlyphs(font, b.Label); err != nil {
			return nil, err
		}
	}

	// a zero-height range cannot be drawn
	top *= headroom
	if top < minHeight {
		top = minHeight
	}

	graph := chart.BarChart{
		Title: title,
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Font:     font,
		Width:    width,
		Height:   height,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return humanize.Comma(int64(f))
				}
				return ""
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func checkGlyphs(font *truetype.Font, label string) error {
	for _, r := range label {
		if unicode.IsSpace(r) {
			continue
		}
		if font.Index(r) == 0 {
			return fmt.Errorf("%w %q (set WALLET_CHART_FONT to a font that covers it)", ErrMissingGlyphs, label)
		}
	}
	return nil
}
