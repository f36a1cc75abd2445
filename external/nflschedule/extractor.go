package nflschedule

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-pickem/internal/domain/schedule"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

const (
	selRoofline = "h2.nfl-c-content-header__roofline"
	selSection  = "section.nfl-o-matchup-group"
	selDayTitle = "h2.d3-o-section-title"
	selStrip    = "div.nfl-c-matchup-strip"
	selTeamName = "span.nfl-c-matchup-strip__team-fullname"
	selRecord   = "div.nfl-c-matchup-strip__record"
	selPeriod   = "p.nfl-c-matchup-strip__period"
	selScore    = "div.nfl-c-matchup-strip__team-score"
	selTime     = "span.nfl-c-matchup-strip__date-time"

	clockLayout   = "3:04 PM"
	defaultRecord = "(0-0)"
)

var dayOfMonthRegex = regexp.MustCompile(`^(\d{1,2})`)

// Extractor turns a rendered schedule page into a schedule.Week. Every
// failure wraps usecase.ErrParseFailure.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Parse(r io.Reader) (schedule.Week, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return schedule.Week{}, parseFailure(crerr.Wrap(err, "read schedule page"))
	}

	roofline := strings.TrimSpace(doc.Find(selRoofline).First().Text())
	if roofline == "" {
		return schedule.Week{}, parseFailure(crerr.New("schedule page has no season header"))
	}
	year, label, err := ParseRoofline(roofline)
	if err != nil {
		return schedule.Week{}, parseFailure(err)
	}

	week := schedule.Week{Year: year, Label: label}
	sections := doc.Find(selSection)
	if sections.Length() == 0 {
		return schedule.Week{}, parseFailure(crerr.Newf("schedule page %q has no matchup groups", roofline))
	}

	var parseErr error
	sections.EachWithBreak(func(_ int, section *goquery.Selection) bool {
		title := strings.TrimSpace(section.Find(selDayTitle).First().Text())
		day, err := ParseDayTitle(title, year)
		if err != nil {
			parseErr = err
			return false
		}

		section.Find(selStrip).EachWithBreak(func(i int, strip *goquery.Selection) bool {
			game, err := parseStrip(strip, day)
			if err != nil {
				parseErr = crerr.Wrapf(err, "%s game %d", title, i+1)
				return false
			}
			week.Games = append(week.Games, game)
			return true
		})
		return parseErr == nil
	})
	if parseErr != nil {
		return schedule.Week{}, parseFailure(parseErr)
	}

	return week, nil
}

func parseStrip(strip *goquery.Selection, day time.Time) (schedule.Game, error) {
	names := texts(strip.Find(selTeamName))
	if len(names) != 2 {
		return schedule.Game{}, crerr.Newf("expected 2 team names, got %d", len(names))
	}
	records := texts(strip.Find(selRecord))
	for len(records) < 2 {
		records = append(records, defaultRecord)
	}

	game := schedule.Game{
		Home:       names[0],
		Away:       names[1],
		HomeRecord: records[0],
		AwayRecord: records[1],
		Kickoff:    day,
	}

	period := strings.TrimSpace(strip.Find(selPeriod).First().Text())
	switch {
	case period == "":
		clock := strings.TrimSpace(strip.Find(selTime).First().Text())
		kickoff, err := combineClock(day, clock)
		if err != nil {
			return schedule.Game{}, err
		}
		game.Kickoff = kickoff
		game.State = schedule.Scheduled{}
	case strings.Contains(strings.ToUpper(period), "FINAL"):
		home, away, err := parseScores(strip.Find(selScore))
		if err != nil {
			return schedule.Game{}, err
		}
		game.State = schedule.Final{Period: period, HomeScore: home, AwayScore: away}
	default:
		game.State = schedule.Live{Period: period}
	}

	return game, nil
}

func parseScores(sel *goquery.Selection) (int, int, error) {
	var scores []int
	var err error
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, ok := s.Attr("data-score")
		if !ok {
			raw = s.Text()
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(raw))
		if convErr != nil || n < 0 {
			err = crerr.Newf("invalid score %q", raw)
			return false
		}
		scores = append(scores, n)
		return true
	})
	if err != nil {
		return 0, 0, err
	}
	if len(scores) != 2 {
		return 0, 0, crerr.Newf("expected 2 scores, got %d", len(scores))
	}
	return scores[0], scores[1], nil
}

// ParseRoofline splits a header like "2021 REGULAR SEASON WEEK 15" into the
// season year and the week label "WEEK 15". PRESEASON and POSTSEASON stay
// in the label so their weeks never collide with regular season weeks.
func ParseRoofline(raw string) (int, string, error) {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return 0, "", crerr.Newf("season header %q has no week", raw)
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil || year < 1900 || year > 9999 {
		return 0, "", crerr.Newf("season header %q does not start with a year", raw)
	}

	rest := fields[1:]
	for len(rest) > 0 {
		word := strings.ToUpper(rest[0])
		if word != "REGULAR" && word != "SEASON" {
			break
		}
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return 0, "", crerr.Newf("season header %q has no week", raw)
	}
	return year, strings.ToUpper(strings.Join(rest, " ")), nil
}

// ParseDayTitle reads "Thursday, December 16th" as a date at midnight. The
// page header carries the season year, so January to July belong to the
// following calendar year.
func ParseDayTitle(raw string, seasonYear int) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	if len(fields) < 3 {
		return time.Time{}, crerr.Newf("day title %q is not a date", raw)
	}
	month, err := time.Parse("January", fields[1])
	if err != nil {
		return time.Time{}, crerr.Newf("day title %q has no month", raw)
	}
	m := dayOfMonthRegex.FindStringSubmatch(fields[2])
	if m == nil {
		return time.Time{}, crerr.Newf("day title %q has no day", raw)
	}
	day, _ := strconv.Atoi(m[1])

	year := seasonYear
	if month.Month() <= time.July {
		year++
	}
	out := time.Date(year, month.Month(), day, 0, 0, 0, 0, time.UTC)
	if out.Day() != day {
		return time.Time{}, crerr.Newf("day title %q is not a valid date", raw)
	}
	return out, nil
}

func combineClock(day time.Time, raw string) (time.Time, error) {
	clock, err := time.Parse(clockLayout, strings.ToUpper(strings.TrimSpace(raw)))
	if err != nil {
		return time.Time{}, crerr.Newf("invalid kickoff time %q", raw)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
}

func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if v := strings.TrimSpace(s.Text()); v != "" {
			out = append(out, v)
		}
	})
	return out
}

// parseFailure tags err so errors.Is(err, usecase.ErrParseFailure) holds
// while the stack recorded by crerr is kept.
func parseFailure(err error) error {
	return fmt.Errorf("%w: %w", usecase.ErrParseFailure, err)
}
