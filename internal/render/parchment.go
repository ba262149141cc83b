// Package render draws the parchment document handed to both parties when
// a trade or treaty is ratified.
package render

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

const (
	Width  = 800
	Height = 1100

	marginLeft  = 50
	indent      = 70
	textWidth   = Width - marginLeft - indent
	stainCount  = 40
	sealRadius  = 80
	lineSpacing = 1.35
)

var (
	parchment = color.RGBA{240, 230, 200, 255}
	ink       = color.RGBA{10, 10, 40, 255}
	rule      = color.RGBA{70, 30, 10, 255}
	signature = color.RGBA{30, 30, 30, 255}
	sealInk   = color.RGBA{120, 40, 30, 255}
)

// Renderer is safe for concurrent use; faces are created per document.
type Renderer struct {
	regular *truetype.Font
	bold    *truetype.Font
	italic  *truetype.Font
}

func NewRenderer() (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("error parsing regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("error parsing bold font: %w", err)
	}
	italic, err := truetype.Parse(goitalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("error parsing italic font: %w", err)
	}
	return &Renderer{regular: regular, bold: bold, italic: italic}, nil
}

type faces struct {
	title, header, content, small font.Face
}

func (r *Renderer) faces() faces {
	return faces{
		title:   truetype.NewFace(r.bold, &truetype.Options{Size: 48}),
		header:  truetype.NewFace(r.regular, &truetype.Options{Size: 34}),
		content: truetype.NewFace(r.regular, &truetype.Options{Size: 24}),
		small:   truetype.NewFace(r.italic, &truetype.Options{Size: 18}),
	}
}

// seed derives the texture seed from the document id so that the same
// record always renders the same parchment.
func seed(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

func background(dc *gg.Context, rnd *rand.Rand) {
	dc.SetColor(parchment)
	dc.Clear()

	img, ok := dc.Image().(*image.RGBA)
	if ok {
		for y := 0; y < Height; y += 2 {
			for x := 0; x < Width; x += 2 {
				edge := min(x, Width-x, y, Height-y)
				darken := 0
				if edge < 150 {
					darken = 30 * (150 - edge) / 150
				}
				noise := rnd.IntN(21) - 10
				c := color.RGBA{
					clamp(int(parchment.R) + noise - darken),
					clamp(int(parchment.G) + noise - darken),
					clamp(int(parchment.B) + noise - darken),
					255,
				}
				img.SetRGBA(x, y, c)
				img.SetRGBA(x+1, y, c)
				img.SetRGBA(x, y+1, c)
				img.SetRGBA(x+1, y+1, c)
			}
		}
	}

	for i := 0; i < stainCount; i++ {
		x := float64(rnd.IntN(Width))
		y := float64(rnd.IntN(Height))
		radius := float64(5 + rnd.IntN(46))
		dc.SetRGBA255(200-rnd.IntN(31), 190-rnd.IntN(41), 160-rnd.IntN(41), 5+rnd.IntN(16))
		dc.DrawCircle(x, y, radius)
		dc.Fill()
	}
}

type page struct {
	dc    *gg.Context
	faces faces
	y     float64
}

func (p *page) text(face font.Face, s string, x float64) {
	p.dc.SetFontFace(face)
	p.dc.SetColor(ink)
	p.dc.DrawStringAnchored(s, x, p.y, 0, 1)
	_, h := p.dc.MeasureString(s)
	p.y += h * lineSpacing
}

func (p *page) centered(face font.Face, s string) {
	p.dc.SetFontFace(face)
	p.dc.SetColor(ink)
	p.dc.DrawStringAnchored(s, Width/2, p.y, 0.5, 1)
	_, h := p.dc.MeasureString(s)
	p.y += h * lineSpacing
}

func (p *page) wrapped(face font.Face, s string, x float64) {
	p.dc.SetFontFace(face)
	p.dc.SetColor(ink)
	lines := p.dc.WordWrap(s, textWidth)
	p.dc.DrawStringWrapped(s, x, p.y, 0, 0, textWidth, lineSpacing, gg.AlignLeft)
	_, h := p.dc.MeasureMultilineString(strings.Join(lines, "\n"), lineSpacing)
	p.y += h
}

func (p *page) gap(d float64) { p.y += d }

func signer(party models.Party) string {
	if party.DisplayName == "" {
		return party.Nation
	}
	return fmt.Sprintf("%s von %s", party.DisplayName, party.Nation)
}

// Render draws n as signed at signedAt and returns the PNG.
func (r *Renderer) Render(n *models.Negotiation, signedAt time.Time) ([]byte, error) {
	dc := gg.NewContext(Width, Height)
	background(dc, rand.New(rand.NewPCG(seed(n.ID), uint64(len(n.ID)))))

	p := &page{dc: dc, faces: r.faces(), y: 50}

	title := "HANDELSVERTRAG"
	if n.Kind == models.KindTreaty && n.Treaty != nil {
		title = strings.ToUpper(n.Treaty.Type.String())
	}
	p.centered(p.faces.title, title)

	dc.SetColor(rule)
	dc.SetLineWidth(2)
	dc.DrawLine(Width/4, 120, 3*Width/4, 120)
	dc.Stroke()

	p.y = 160
	p.text(p.faces.header, "Zwischen den ehrenwerten Herrschern", marginLeft)
	p.gap(10)
	p.text(p.faces.content, signer(n.Initiator), 100)
	p.text(p.faces.content, "und", 100)
	p.text(p.faces.content, signer(n.Counterparty), 100)
	p.gap(30)

	switch {
	case n.Trade != nil:
		p.text(p.faces.header, "Wurde folgende Handelsvereinbarung getroffen:", marginLeft)
		p.gap(10)
		p.text(p.faces.content, n.Initiator.Nation+" bietet:", 100)
		p.text(p.faces.content, n.Trade.Offer.String(), 150)
		p.gap(15)
		p.text(p.faces.content, n.Counterparty.Nation+" bietet:", 100)
		p.text(p.faces.content, n.Trade.Request.String(), 150)
	case n.Treaty != nil:
		p.text(p.faces.header, "Wird folgender Vertrag geschlossen:", marginLeft)
		p.gap(10)
		p.wrapped(p.faces.content, n.Treaty.Type.Clause(), indent)
		p.gap(20)
		p.text(p.faces.content, fmt.Sprintf("Vertragsdauer: %d Tage, bis %s", n.Treaty.DurationDays, n.Treaty.ExpiresAt.Format("02.01.2006")), indent)
	}

	p.gap(30)
	p.text(p.faces.content, "Vertragsbruch-Klausel:", marginLeft)
	p.wrapped(p.faces.small, n.Clause(), indent)

	if n.Notes != "" {
		p.gap(30)
		p.text(p.faces.content, "Anmerkungen:", marginLeft)
		p.wrapped(p.faces.small, n.Notes, indent)
	}

	// Keep the date, signatures and seals on the page.
	p.y = min(max(p.y+50, 780), 800)
	p.centered(p.faces.content, "Unterzeichnet am "+signedAt.Format("02.01.2006, 15:04 Uhr"))

	signY := p.y + 50
	lineWidth := float64(Width / 3)
	left := float64(Width / 6)
	right := float64(Width/2 + Width/6)
	for i, party := range []models.Party{n.Initiator, n.Counterparty} {
		x := left
		if i == 1 {
			x = right
		}
		dc.SetColor(signature)
		dc.SetLineWidth(1)
		dc.DrawLine(x, signY, x+lineWidth, signY)
		dc.Stroke()

		dc.SetFontFace(p.faces.small)
		dc.SetColor(ink)
		dc.DrawStringAnchored(party.DisplayName, x+lineWidth/2, signY+10, 0.5, 1)

		dc.SetColor(sealInk)
		dc.SetLineWidth(3)
		dc.DrawCircle(x+lineWidth/2, signY+40+sealRadius, sealRadius)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("error encoding document: %w", err)
	}
	return buf.Bytes(), nil
}
