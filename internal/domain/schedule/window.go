package schedule

// Window bounds games by epoch seconds. Nil bounds are open.
type Window struct {
	Since *int64
	Until *int64
}

func (w Window) Bounded() bool {
	return w.Since != nil || w.Until != nil
}

// Contains reports whether a game date falls inside the window. Undated
// games only pass an unbounded window.
func (w Window) Contains(date *int64) bool {
	if date == nil {
		return !w.Bounded()
	}
	if w.Since != nil && *date < *w.Since {
		return false
	}
	if w.Until != nil && *date > *w.Until {
		return false
	}
	return true
}

// Filter keeps the games inside the window, preserving order.
func (w Window) Filter(games []Game) []Game {
	out := make([]Game, 0, len(games))
	for _, item := range games {
		if w.Contains(item.Date) {
			out = append(out, item)
		}
	}
	return out
}
