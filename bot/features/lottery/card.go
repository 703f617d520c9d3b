package lottery

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"lotteryledger/bot/common"
	"lotteryledger/domain/entities"
	"lotteryledger/domain/utils"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// CardFileName is the attachment name the lottery embed image points at
const CardFileName = "lottery.png"

const (
	cardWidth    = 420
	cardHeight   = 170
	cardPadding  = 18
	slotGap      = 4
	maxSlotCount = 50
)

// CardRenderer draws the round card attached to the lottery message
type CardRenderer struct {
	mu        sync.Mutex // font faces are not safe for concurrent use
	titleFace font.Face
	bodyFace  font.Face
	smallFace font.Face
}

// NewCardRenderer parses the embedded Go fonts
func NewCardRenderer() (*CardRenderer, error) {
	titleFace, err := loadFont(gobold.TTF, 18)
	if err != nil {
		return nil, fmt.Errorf("failed to load title font: %w", err)
	}
	bodyFace, err := loadFont(gomono.TTF, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to load body font: %w", err)
	}
	smallFace, err := loadFont(gomono.TTF, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load small font: %w", err)
	}

	return &CardRenderer{
		titleFace: titleFace,
		bodyFace:  bodyFace,
		smallFace: smallFace,
	}, nil
}

// Render draws the lottery as a PNG: pool, price and one slot per ticket
func (r *CardRenderer) Render(lottery *entities.Lottery) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("tickets", lottery.TicketCount()).
			Debug("Lottery card rendered")
	}()

	dc := gg.NewContext(cardWidth, cardHeight)

	// Background gradient
	for y := 0; y < cardHeight; y++ {
		t := float64(y) / float64(cardHeight)
		dc.SetRGB(0.05+t*0.03, 0.04+t*0.06, 0.10+t*0.12)
		dc.DrawLine(0, float64(y), cardWidth, float64(y))
		dc.Stroke()
	}

	// Header
	dc.SetFontFace(r.titleFace)
	dc.SetRGB(1, 0.84, 0)
	drawSharpText(dc, fmt.Sprintf("Lottery round %d", lottery.Round), cardPadding, 32)

	dc.SetFontFace(r.bodyFace)
	dc.SetRGB(0.85, 0.85, 0.9)
	dc.DrawStringAnchored(common.FormatLotteryState(lottery.State), cardWidth-cardPadding, 28, 1, 0)

	// Pool and price
	pool := lottery.Stakes()
	if lottery.State == entities.LotteryStateEnded {
		pool = lottery.TicketPrice * lottery.TicketCount()
	}
	dc.SetRGB(0.6, 1, 0.6)
	drawSharpText(dc, fmt.Sprintf("Pool  %s bits", utils.FormatShortNotation(pool)), cardPadding, 62)
	dc.SetRGB(0.85, 0.85, 1)
	drawSharpText(dc, fmt.Sprintf("Price %s bits", utils.FormatShortNotation(lottery.TicketPrice)), cardPadding, 80)
	dc.DrawStringAnchored(
		fmt.Sprintf("%d / %d tickets", lottery.TicketCount(), lottery.MaxTicketCount),
		cardWidth-cardPadding, 80, 1, 0,
	)

	r.drawSlots(dc, lottery)

	dc.SetFontFace(r.smallFace)
	dc.SetRGB(0.6, 0.6, 0.65)
	footer := "The last ticket takes the pool"
	w, _ := dc.MeasureString(footer)
	drawSharpText(dc, footer, (cardWidth-w)/2, cardHeight-12)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawSlots draws one cell per ticket; large capacities collapse into a progress bar
func (r *CardRenderer) drawSlots(dc *gg.Context, lottery *entities.Lottery) {
	top := 96.0
	height := 36.0
	width := float64(cardWidth - 2*cardPadding)

	sold := lottery.TicketCount()
	if lottery.MaxTicketCount > maxSlotCount {
		dc.SetRGBA(1, 1, 1, 0.08)
		dc.DrawRoundedRectangle(cardPadding, top, width, height, 4)
		dc.Fill()

		filled := width * float64(sold) / float64(lottery.MaxTicketCount)
		dc.SetRGBA(1, 0.84, 0, 0.8)
		dc.DrawRoundedRectangle(cardPadding, top, filled, height, 4)
		dc.Fill()
		return
	}

	slots := lottery.MaxTicketCount
	slotWidth := (width - float64(slots-1)*slotGap) / float64(slots)
	for i := int64(0); i < slots; i++ {
		x := cardPadding + float64(i)*(slotWidth+slotGap)
		switch {
		case i < sold && i == lottery.MaxTicketCount-1:
			dc.SetRGB(1, 0.84, 0) // the settling ticket
		case i < sold:
			dc.SetRGBA(0.35, 0.75, 1, 0.85)
		default:
			dc.SetRGBA(1, 1, 1, 0.08)
		}
		dc.DrawRoundedRectangle(x, top, slotWidth, height, 3)
		dc.Fill()
	}
}

// drawSharpText draws text over a faint shadow
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

// loadFont loads a font from byte data
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
