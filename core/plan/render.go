package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// Title heads every rendered plan.
const Title = "SMART EV CHARGING PLAN"

// Clock maps simulation hours to wall clock time. Hour 0 of the simulation
// starts at StartHour on the day after Today plus DayOffset days.
type Clock struct {
	StartHour int
	DayOffset int
	Today     time.Time
}

// NewClock anchors a Clock to the current local date.
func NewClock(startHour, dayOffset int) Clock {
	return Clock{StartHour: startHour, DayOffset: dayOffset, Today: time.Now()}
}

// StartDate is the calendar date of simulation hour 0.
func (c Clock) StartDate() time.Time {
	y, m, d := c.Today.Date()
	return time.Date(y, m, d+c.DayOffset+1, 0, 0, 0, 0, c.Today.Location())
}

// Day returns the number of days between hour 0 and hour h.
func (c Clock) Day(h int) int { return (c.StartHour + h) / 24 }

// HourOfDay returns the wall clock hour of simulation hour h.
func (c Clock) HourOfDay(h int) int { return (c.StartHour + h) % 24 }

// Time returns the wall clock time at which simulation hour h starts.
func (c Clock) Time(h int) time.Time {
	return c.StartDate().Add(time.Duration(c.StartHour+h) * time.Hour)
}

// Label formats simulation hour h on a 12 hour clock, e.g. "07:00 PM".
func (c Clock) Label(h int) string {
	hh := c.HourOfDay(h)
	suffix := "AM"
	if hh >= 12 {
		suffix = "PM"
	}
	disp := hh
	switch {
	case hh == 0:
		disp = 12
	case hh > 12:
		disp = hh - 12
	}
	return fmt.Sprintf("%02d:00 %s", disp, suffix)
}

// Render writes the plan of r grouped by calendar day. Each day lists its
// blocks by category, then chronologically; days without blocks are skipped.
func Render(r scheduler.Result, clock Clock, deadlineHour int) string {
	blocks := ExtractBlocks(r, deadlineHour)
	start := clock.StartDate()

	lines := []string{
		Title,
		fmt.Sprintf("Simulation starts on %s at %s", start.Format("Monday 02 Jan 2006"), clock.Label(0)),
		"",
	}
	lastDay := 0
	for _, b := range blocks {
		lastDay = max(lastDay, clock.Day(b.End))
	}
	for day := 0; day <= lastDay; day++ {
		var entries []string
		for _, b := range blocks {
			if clock.Day(b.Start) != day {
				continue
			}
			entries = append(entries, fmt.Sprintf("- %s: %s - %s", b.Category, clock.Label(b.Start), clock.Label(b.End+1)))
		}
		if len(entries) == 0 {
			continue
		}
		lines = append(lines, start.AddDate(0, 0, day).Format("Monday 02 Jan"))
		lines = append(lines, entries...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// RenderPlan renders r against today's date. dayOffset counts days after
// tomorrow.
func RenderPlan(r scheduler.Result, simStartHour, deadlineHour, dayOffset int) string {
	return Render(r, NewClock(simStartHour, dayOffset), deadlineHour)
}
