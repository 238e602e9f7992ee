package page

import (
	"time"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

// scrollParams tunes the swipe-into-view loops.
type scrollParams struct {
	probeTimeout time.Duration // visibility probe per round
	maxRound     int           // swipe or flick rounds
	maxAdjust    int           // border alignment rounds
	minDistance  int           // shortest corrective swipe, in pixels
	durationMs   int           // swipe stroke duration
}

func defaultScrollParams() scrollParams {
	return scrollParams{
		probeTimeout: 3 * time.Second,
		maxRound:     10,
		maxAdjust:    2,
		minDistance:  100,
		durationMs:   1000,
	}
}

// ScrollOption tunes SwipeBy and FlickBy.
type ScrollOption func(*scrollParams)

// ProbeTimeout sets the per-round visibility probe timeout.
func ProbeTimeout(d time.Duration) ScrollOption {
	return func(p *scrollParams) { p.probeTimeout = d }
}

// MaxRound caps the number of swipe or flick rounds.
func MaxRound(n int) ScrollOption {
	return func(p *scrollParams) { p.maxRound = n }
}

// MaxAdjustment caps the number of border alignment rounds.
func MaxAdjustment(n int) ScrollOption {
	return func(p *scrollParams) { p.maxAdjust = n }
}

// MinDistance sets the shortest corrective swipe. Too short a stroke is
// interpreted as a tap by some drivers.
func MinDistance(px int) ScrollOption {
	return func(p *scrollParams) { p.minDistance = px }
}

// StrokeDuration sets the swipe stroke duration in milliseconds.
func StrokeDuration(ms int) ScrollOption {
	return func(p *scrollParams) { p.durationMs = ms }
}

func applyScroll(opts []ScrollOption) scrollParams {
	p := defaultScrollParams()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// SwipeBy swipes along the offset, resolved against the area, until the
// element becomes visible, then aligns its borders inside the area with
// short corrective swipes. Intended for native mobile views where
// off-screen elements are absent from the tree.
func (e *Element) SwipeBy(offset config.Offset, area config.Area, opts ...ScrollOption) error {
	return e.scrollIntoView(offset, area, applyScroll(opts), false)
}

// FlickBy is SwipeBy with fast flick strokes for the search rounds.
// Alignment still uses swipes, since flicks overshoot.
func (e *Element) FlickBy(offset config.Offset, area config.Area, opts ...ScrollOption) error {
	return e.scrollIntoView(offset, area, applyScroll(opts), true)
}

func (e *Element) scrollIntoView(offset config.Offset, area config.Area, p scrollParams, flick bool) error {
	c, err := e.client()
	if err != nil {
		return err
	}
	rect, err := resolveArea(c, area)
	if err != nil {
		return err
	}
	sx, sy, ex, ey, err := resolveOffset(offset, rect)
	if err != nil {
		return err
	}
	if err := e.searchRounds(c, sx, sy, ex, ey, p, flick); err != nil {
		return err
	}
	return e.adjustRounds(c, sx, sy, rect, p)
}

// searchRounds strokes the offset until the element becomes visible or
// the round cap is hit. Hitting the cap is logged, not an error: the
// caller's next interaction reports the element state.
func (e *Element) searchRounds(c *webdriver.Client, sx, sy, ex, ey int, p scrollParams, flick bool) error {
	if p.maxRound == 0 {
		e.log.Warn("max round is 0, no scrolling performed")
		return nil
	}
	round := 0
	for !e.IsViewable(WithTimeout(p.probeTimeout)) {
		if round == p.maxRound {
			e.log.Warn("element still not viewable after %d rounds", p.maxRound)
			return nil
		}
		var err error
		if flick {
			err = c.Flick(sx, sy, ex, ey)
		} else {
			err = c.Swipe(sx, sy, ex, ey, p.durationMs)
		}
		if err != nil {
			return err
		}
		round++
	}
	e.log.Debug("element viewable after %d rounds", round)
	return nil
}

// adjustRounds nudges the view until every element border sits inside
// the area, up to the adjustment cap.
func (e *Element) adjustRounds(c *webdriver.Client, sx, sy int, area webdriver.Rect, p scrollParams) error {
	if p.maxAdjust == 0 {
		return nil
	}
	round := 0
	for {
		b, err := e.Border()
		if err != nil {
			return err
		}
		dx, dy := adjustDelta(b, borderOf(area), p.minDistance)
		if dx == 0 && dy == 0 {
			e.log.Debug("alignment done after %d rounds", round)
			return nil
		}
		if round == p.maxAdjust {
			e.log.Debug("stop adjusting after max %d rounds", p.maxAdjust)
			return nil
		}
		if err := c.Swipe(sx, sy, sx+dx, sy+dy, p.durationMs); err != nil {
			return err
		}
		round++
	}
}

// adjustDelta computes the corrective stroke that pulls the element
// borders inside the area borders. An axis where both borders stick out
// cannot be resolved by scrolling, so it contributes nothing.
func adjustDelta(elem, area Border, minDistance int) (dx, dy int) {
	deltaLeft := area.Left - elem.Left
	deltaRight := area.Right - elem.Right
	deltaTop := area.Top - elem.Top
	deltaBottom := area.Bottom - elem.Bottom

	leftOut := deltaLeft > 0
	rightOut := deltaRight < 0
	topOut := deltaTop > 0
	bottomOut := deltaBottom < 0
	if (leftOut && rightOut) || (topOut && bottomOut) {
		return 0, 0
	}
	switch {
	case leftOut:
		dx = correctiveDistance(deltaLeft, minDistance)
	case rightOut:
		dx = correctiveDistance(deltaRight, minDistance)
	}
	switch {
	case topOut:
		dy = correctiveDistance(deltaTop, minDistance)
	case bottomOut:
		dy = correctiveDistance(deltaBottom, minDistance)
	}
	return dx, dy
}

// correctiveDistance keeps the stroke at least minDistance long while
// preserving its direction.
func correctiveDistance(delta, minDistance int) int {
	d := delta
	if d < 0 {
		d = -d
	}
	if d < minDistance {
		d = minDistance
	}
	if delta < 0 {
		return -d
	}
	return d
}
