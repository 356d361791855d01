package events

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"community-bot/model"
	"community-bot/utils"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var compactTime = regexp.MustCompile(`(\d{1,2})(\d{2})\s*(am|pm)`)

// TimeParser turns member input into an event start.
type TimeParser struct {
	w   *when.Parser
	loc *time.Location
}

func NewTimeParser(loc *time.Location) *TimeParser {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &TimeParser{w: w, loc: loc}
}

// Parse reads input relative to now. An exact "YYYY-MM-DD HH:MM" is taken as
// is, anything else goes through the natural language parser ("tomorrow 8pm",
// "in 3 hours"). The start must be in the future and is truncated to the minute.
func (p *TimeParser) Parse(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: tell me when the event starts", utils.ErrInvalidInput)
	}
	now = now.In(p.loc)

	start, err := time.ParseInLocation(model.EventDateLayout+" "+model.EventTimeLayout, input, p.loc)
	if err != nil {
		normalized := strings.ToLower(input)
		normalized = compactTime.ReplaceAllString(normalized, "$1:$2 $3")
		r, perr := p.w.Parse(normalized, now)
		if perr != nil || r == nil {
			return time.Time{}, fmt.Errorf("%w: could not read %q as a time, try \"2026-05-01 20:00\" or \"tomorrow 8pm\"", utils.ErrInvalidInput, input)
		}
		start = r.Time.In(p.loc)
	}

	start = start.Truncate(time.Minute)
	if !start.After(now) {
		return time.Time{}, fmt.Errorf("%w: the start (%s) must be in the future", utils.ErrInvalidInput, start.Format(model.EventDateLayout+" "+model.EventTimeLayout))
	}
	return start, nil
}
