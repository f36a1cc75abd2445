package nflschedule

import "strings"

type stripFixture struct {
	home, away       string
	homeRec, awayRec string
	period           string
	homeScore        string
	awayScore        string
	clock            string
}

func stripHTML(f stripFixture) string {
	var b strings.Builder
	b.WriteString(`<div class="nfl-c-matchup-strip nfl-c-matchup-strip--pre-game">`)
	if f.period != "" {
		b.WriteString(`<p class="nfl-c-matchup-strip__period">` + f.period + `</p>`)
	}
	for i, name := range []string{f.home, f.away} {
		rec := f.homeRec
		score := f.homeScore
		if i == 1 {
			rec, score = f.awayRec, f.awayScore
		}
		b.WriteString(`<div class="nfl-c-matchup-strip__team">`)
		b.WriteString(`<p class="nfl-c-matchup-strip__team-name"><span class="nfl-c-matchup-strip__team-abbreviation">XX</span>`)
		b.WriteString(`<span class="nfl-c-matchup-strip__team-fullname">` + name + `</span></p>`)
		if rec != "" {
			b.WriteString(`<div class="nfl-c-matchup-strip__record">` + rec + `</div>`)
		}
		if score != "" {
			b.WriteString(`<div class="nfl-c-matchup-strip__team-score" data-score="` + score + `">` + score + `</div>`)
		}
		b.WriteString(`</div>`)
	}
	if f.clock != "" {
		b.WriteString(`<p class="nfl-c-matchup-strip__date-info"><span class="nfl-c-matchup-strip__date-time">` + f.clock +
			`</span><span class="nfl-c-matchup-strip__date-timezone">EDT</span></p>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func sectionHTML(day string, strips ...stripFixture) string {
	var b strings.Builder
	b.WriteString(`<section class="d3-l-grid--outer d3-l-section-row nfl-o-matchup-group">`)
	b.WriteString(`<h2 class="d3-o-section-title">` + day + `</h2>`)
	for _, s := range strips {
		b.WriteString(stripHTML(s))
	}
	b.WriteString(`</section>`)
	return b.String()
}

func pageHTML(roofline string, sections ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="nfl-c-content-header">`)
	if roofline != "" {
		b.WriteString(`<h2 class="nfl-c-content-header__roofline">` + roofline + `</h2>`)
	}
	b.WriteString(`</div>`)
	for _, s := range sections {
		b.WriteString(s)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// week15Page mixes a finished overtime game, a live game and a scheduled one.
func week15Page() string {
	return pageHTML("2021 REGULAR SEASON WEEK 15",
		sectionHTML("Thursday, December 16th",
			stripFixture{home: "Chiefs", away: "Chargers", homeRec: "(10-4)", awayRec: "(8-6)", period: "FINAL/OT", homeScore: "34", awayScore: "28"},
		),
		sectionHTML("Sunday, December 19th",
			stripFixture{home: "Cowboys", away: "Giants", homeRec: "(10-4)", awayRec: "(4-10)", period: "3rd 04:12", homeScore: "14", awayScore: "3"},
		),
		sectionHTML("Tuesday, December 21st",
			stripFixture{home: "Commanders", away: "Eagles", homeRec: "(6-7)", awayRec: "(6-7)", clock: "6:00 PM"},
		),
	)
}
