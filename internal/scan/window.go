package scan

import "time"

// DateLayout is the directory naming scheme of the scanned log tree:
// one subdirectory per calendar day.
const DateLayout = "2006-01-02"

// Window is the resolved set of calendar dates one scan run covers.
// Start is the most recent date in the window; the window extends Days
// dates backwards from it.
type Window struct {
	BaseDir string
	Start   time.Time
	Days    int
}

// NewWindow resolves a window against the given reference day, usually
// today. startDayOffset shifts the whole window into the past, e.g. an
// offset of 1 checks yesterday backwards.
func NewWindow(baseDir string, today time.Time, startDayOffset, days int) Window {
	return Window{
		BaseDir: baseDir,
		Start:   today.AddDate(0, 0, -startDayOffset),
		Days:    days,
	}
}

// Dates returns the window's dates, most recent first. Scan results and
// report sections follow this order.
func (w Window) Dates() []time.Time {
	dates := make([]time.Time, w.Days)
	for i := range dates {
		dates[i] = w.Start.AddDate(0, 0, -i)
	}
	return dates
}
