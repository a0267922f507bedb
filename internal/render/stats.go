// Package render draws the side-by-side plan comparison map and computes
// the district statistics shown with it.
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/politech/processor/internal/geo"
	"github.com/politech/processor/internal/plans"
)

// DistrictStats is the demographic and electoral rollup for one district
// under one plan.
type DistrictStats struct {
	DistrictID  int
	TotalPop    float64
	Households  float64
	CVAP        float64
	WhitePop    float64
	BlackPop    float64
	HispanicPop float64
	AsianPop    float64
	DemVotes    float64
	RepVotes    float64
	HasVotes    bool
}

// Election columns follow the VEST layout: G, two-digit year, three-letter
// race code, party letter, candidate. The seventh character is the party.
var demColRe = regexp.MustCompile(`^G\d{2}[A-Z]{3}D`)
var repColRe = regexp.MustCompile(`^G\d{2}[A-Z]{3}R`)

// ComputeStats joins plan assignments onto the precinct layer and sums
// population, households, CVAP, and votes per district. Precincts without
// an assignment in the plan are ignored.
func ComputeStats(precincts *geo.Layer, assignments []plans.Assignment, planID, yy string) []DistrictStats {
	districtOf := map[string]int{}
	for _, a := range assignments {
		if a.PlanID == planID {
			districtOf[a.PrecinctID] = a.DistrictID
		}
	}

	byDistrict := map[int]*DistrictStats{}
	for _, attrs := range precincts.Attrs {
		id := geo.String(attrs, "UNIQUE_ID")
		d, ok := districtOf[id]
		if !ok {
			continue
		}

		s := byDistrict[d]
		if s == nil {
			s = &DistrictStats{DistrictID: d}
			byDistrict[d] = s
		}

		s.TotalPop += geo.Float(attrs, "TOT_POP"+yy)
		s.Households += geo.Float(attrs, "TOT_HOUS"+yy)
		s.CVAP += geo.Float(attrs, "TOT_CVAP"+yy)
		s.WhitePop += geo.Float(attrs, "WHT_POP"+yy)
		s.BlackPop += geo.Float(attrs, "BLK_POP"+yy)
		s.HispanicPop += geo.Float(attrs, "HSP_POP"+yy)
		s.AsianPop += geo.Float(attrs, "ASN_POP"+yy)

		for col := range attrs {
			switch {
			case demColRe.MatchString(col):
				s.DemVotes += geo.Float(attrs, col)
				s.HasVotes = true
			case repColRe.MatchString(col):
				s.RepVotes += geo.Float(attrs, col)
				s.HasVotes = true
			}
		}
	}

	out := make([]DistrictStats, 0, len(byDistrict))
	for _, s := range byDistrict {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistrictID < out[j].DistrictID })
	return out
}

// FormatStats renders a district statistics table with thousands
// separators, ending in a totals row.
func FormatStats(stats []DistrictStats, planName string) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	hasVotes := false
	for _, s := range stats {
		if s.HasVotes {
			hasVotes = true
			break
		}
	}

	width := 120
	if hasVotes {
		width = 140
	}
	rule := strings.Repeat("=", width)
	dash := strings.Repeat("-", width)

	fmt.Fprintf(&b, "%s\nDistrict Statistics for %s\n%s\n", rule, planName, rule)
	fmt.Fprintf(&b, "%-10s %12s %12s %12s %9s %9s %9s %9s", "District", "Total Pop", "Households", "CVAP", "White %", "Black %", "Hisp %", "Asian %")
	if hasVotes {
		fmt.Fprintf(&b, " %12s %12s", "Dem Votes", "Rep Votes")
	}
	b.WriteString("\n" + dash + "\n")

	var totPop, totHouse, totCVAP, totDem, totRep float64
	for _, s := range stats {
		pct := func(v float64) float64 {
			if s.TotalPop <= 0 {
				return 0
			}
			return v / s.TotalPop * 100
		}
		p.Fprintf(&b, "%-10d %12.0f %12.0f %12.0f %8.1f%% %8.1f%% %8.1f%% %8.1f%%",
			s.DistrictID, s.TotalPop, s.Households, s.CVAP,
			pct(s.WhitePop), pct(s.BlackPop), pct(s.HispanicPop), pct(s.AsianPop))
		if hasVotes {
			p.Fprintf(&b, " %12.0f %12.0f", s.DemVotes, s.RepVotes)
		}
		b.WriteString("\n")

		totPop += s.TotalPop
		totHouse += s.Households
		totCVAP += s.CVAP
		totDem += s.DemVotes
		totRep += s.RepVotes
	}

	b.WriteString(dash + "\n")
	p.Fprintf(&b, "%-10s %12.0f %12.0f %12.0f", "TOTAL", totPop, totHouse, totCVAP)
	if hasVotes {
		p.Fprintf(&b, " %9s %9s %9s %9s %12.0f %12.0f", "", "", "", "", totDem, totRep)
	}
	b.WriteString("\n" + rule + "\n")
	return b.String()
}
