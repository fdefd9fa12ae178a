package leaderboard

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"

	"teto/bot/common"
)

// Row is one ranked line of the intimacy leaderboard card
type Row struct {
	Rank          int
	Name          string
	Intimacy      int
	DailyMessages int64
}

type column struct {
	header string
	x      float64
	rgb    [3]float64
}

// CardStyle defines the dimensions and palette of the card
type CardStyle struct {
	Width     int
	MinHeight int
	Padding   int
	RowHeight int
	Podium    [3][4]float64 // RGBA row tint for ranks 1-3
}

// ImageGenerator renders leaderboard cards as PNG
type ImageGenerator struct {
	style   CardStyle
	regular font.Face
	bold    font.Face
	small   font.Face
	maxName int
}

// NewImageGenerator creates a generator with the default style and parsed fonts
func NewImageGenerator() (*ImageGenerator, error) {
	regular, err := loadFont(gomono.TTF, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to load mono font: %w", err)
	}
	bold, err := loadFont(gobold.TTF, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}
	small, err := loadFont(gobold.TTF, 9)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank font: %w", err)
	}

	return &ImageGenerator{
		style: CardStyle{
			Width:     400,
			MinHeight: 160,
			Padding:   16,
			RowHeight: 26,
			Podium: [3][4]float64{
				{1, 0.55, 0.75, 0.18},
				{0.8, 0.8, 0.9, 0.10},
				{0.9, 0.6, 0.4, 0.08},
			},
		},
		regular: regular,
		bold:    bold,
		small:   small,
		maxName: 18,
	}, nil
}

// Height returns the card height for the given number of rows
func (g *ImageGenerator) Height(rows int) int {
	// title + header + rows + bottom padding
	height := 40 + 30 + rows*g.style.RowHeight + g.style.Padding
	if height < g.style.MinHeight {
		height = g.style.MinHeight
	}
	return height
}

// Generate draws the card for a guild's top members
func (g *ImageGenerator) Generate(title string, rows []Row) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithFields(log.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"row_count":   len(rows),
		}).Debug("Leaderboard image generation completed")
	}()

	height := g.Height(len(rows))
	width := float64(g.style.Width)
	pad := float64(g.style.Padding)

	dc := gg.NewContext(g.style.Width, height)

	// Vertical gradient background
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		dc.SetRGB(0.07+t*0.05, 0.04+t*0.03, 0.10+t*0.08)
		dc.DrawLine(0, float64(y), width, float64(y))
		dc.Stroke()
	}

	dc.SetFontFace(g.bold)
	dc.SetRGB(1, 0.75, 0.88)
	dc.DrawStringAnchored(title, width/2, 24, 0.5, 0.5)

	columns := []column{
		{header: "#", x: pad, rgb: [3]float64{0.85, 0.85, 0.9}},
		{header: "User", x: pad + 32, rgb: [3]float64{1, 1, 1}},
		{header: "Intimacy", x: pad + 220, rgb: [3]float64{1, 0.7, 0.85}},
		{header: "Today", x: pad + 310, rgb: [3]float64{0.8, 0.85, 1}},
	}

	y := 62.0
	dc.SetFontFace(g.regular)
	dc.SetRGBA(0.4, 0.3, 0.5, 0.45)
	dc.DrawRectangle(0, y-15, width, 20)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for _, col := range columns {
		drawSharpText(dc, col.header, col.x, y)
	}

	dc.SetRGBA(0.7, 0.6, 0.8, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, width, y+8)
	dc.Stroke()

	y += 30
	if len(rows) == 0 {
		dc.SetRGB(0.7, 0.7, 0.7)
		dc.DrawStringAnchored("No one here yet", width/2, y, 0.5, 0.5)
	}

	for i, row := range rows {
		if i < len(g.style.Podium) {
			tint := g.style.Podium[i]
			dc.SetRGBA(tint[0], tint[1], tint[2], tint[3])
		} else {
			dc.SetRGBA(0.5, 0.5, 0.6, 0.03)
		}
		dc.DrawRectangle(0, y-16, width, float64(g.style.RowHeight))
		dc.Fill()

		if i < 3 {
			g.drawPodiumRank(dc, i, row.Rank, pad+4, y-4)
		} else {
			c := columns[0].rgb
			dc.SetRGB(c[0], c[1], c[2])
			drawSharpText(dc, fmt.Sprintf("%d", row.Rank), columns[0].x, y)
		}

		cells := []string{
			truncate(row.Name, g.maxName),
			common.FormatCredits(int64(row.Intimacy)),
			common.FormatCredits(row.DailyMessages),
		}
		for j, cell := range cells {
			col := columns[j+1]
			dc.SetRGB(col.rgb[0], col.rgb[1], col.rgb[2])
			drawSharpText(dc, cell, col.x, y)
		}

		y += float64(g.style.RowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// drawPodiumRank draws a heart-coloured badge with the rank inside
func (g *ImageGenerator) drawPodiumRank(dc *gg.Context, place, rank int, x, y float64) {
	switch place {
	case 0:
		dc.SetRGB(1, 0.4, 0.65)
	case 1:
		dc.SetRGB(0.78, 0.78, 0.85)
	default:
		dc.SetRGB(0.85, 0.55, 0.3)
	}
	dc.DrawCircle(x, y, 7)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(g.small)
	dc.DrawStringAnchored(fmt.Sprintf("%d", rank), x, y-1, 0.5, 0.4)
	dc.SetFontFace(g.regular)
}

func truncate(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}

// drawSharpText draws text over a faint offset shadow
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
