package gui

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	popupRise     = 30  // pixels a popup climbs before vanishing
	popupDuration = 0.8 // seconds
)

// popup is a floating "+N" label shown when a tile pays out.
type popup struct {
	text   string
	x, y   float64 // World position where the reward happened
	offset float32
	rise   *gween.Tween
	done   bool
}

func newPopup(reward int, x, y float64) *popup {
	return &popup{
		text: fmt.Sprintf("+%d", reward),
		x:    x,
		y:    y,
		rise: gween.New(0, -popupRise, popupDuration, ease.OutQuad),
	}
}

// update advances the rise animation by dt seconds.
func (p *popup) update(dt float32) {
	p.offset, p.done = p.rise.Update(dt)
}

// updatePopups advances every popup and drops the finished ones.
func updatePopups(popups []*popup, dt float32) []*popup {
	live := popups[:0]
	for _, p := range popups {
		p.update(dt)
		if !p.done {
			live = append(live, p)
		}
	}
	return live
}
