package render

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cvstudio/internal/cv"
)

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

type timelineEvent struct {
	Icon  string
	Year  int
	Title string
}

type timelineData struct {
	Events []timelineEvent
}

// Timeline merges education, experience and achievements into one list
// ordered by year, newest first. Entries without a recognizable four-digit
// year are left out.
func (r *Renderer) Timeline(rec cv.Record) (string, error) {
	var events []timelineEvent

	for _, it := range cv.MainSections {
		icon := timelineIcon(it.Name)
		for _, item := range it.Items(rec) {
			year, ok := extractYear(item.Date)
			if !ok {
				continue
			}
			events = append(events, timelineEvent{
				Icon:  icon,
				Year:  year,
				Title: r.clean(item.Title),
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Year > events[j].Year
	})

	var b strings.Builder
	if err := r.tpl.ExecuteTemplate(&b, "timeline", timelineData{Events: events}); err != nil {
		return "", fmt.Errorf("render timeline: %w", err)
	}
	return b.String(), nil
}

func timelineIcon(section string) string {
	switch section {
	case "estudios":
		return "\U0001F393" // 🎓
	case "experiencia":
		return "\U0001F4BC" // 💼
	case "logros":
		return "\U0001F3C6" // 🏆
	}
	return ""
}

// extractYear picks the last four-digit year in a date string, so ranges
// like "2019 - 2023" sort by their end.
func extractYear(date string) (int, bool) {
	matches := yearPattern.FindAllString(date, -1)
	if len(matches) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return 0, false
	}
	return year, true
}
