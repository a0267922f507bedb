// Package aggregate merges ACS and CVAP demographics onto block-group
// geometry and rolls them up to election precincts by largest overlap.
package aggregate

// Group prefixes shared by the population and CVAP column families.
var raceGroups = []string{"HSP", "WHT", "BLK", "AIA", "ASN", "HPI", "OTH", "2OM"}

// nhspGroups are the not-Hispanic groups summed into NHSP.
var nhspPopGroups = []string{"WHT", "BLK", "AIA", "ASN", "HPI", "OTH", "2OM"}
var nhspCVAPGroups = []string{"WHT", "BLK", "AIA", "ASN", "HPI", "2OM"}

var incomeBrackets = []string{
	"LESS_10K", "10K_15K", "15K_20K", "20K_25K",
	"25K_30K", "30K_35K", "35K_40K", "40K_45K",
	"45K_50K", "50K_60K", "60K_75K", "75K_100K",
	"100_125K", "125_150K", "150_200K", "200K_MOR",
}

// PopColumns lists the population columns carried through aggregation,
// including the derived NHSP and TOT columns.
func PopColumns(yy string) []string {
	var cols []string
	for _, g := range raceGroups {
		cols = append(cols, g+"_POP"+yy)
	}
	return append(cols, "NHSP_POP"+yy, "TOT_POP"+yy)
}

// CVAPColumns lists the CVAP columns carried through aggregation. The
// special tab has no separate other-race line, so there is no OTH_CVAP.
func CVAPColumns(yy string) []string {
	var cols []string
	for _, g := range raceGroups {
		if g == "OTH" {
			continue
		}
		cols = append(cols, g+"_CVAP"+yy)
	}
	return append(cols, "NHSP_CVAP"+yy, "TOT_CVAP"+yy)
}

// IncomeColumns lists the household income bracket columns plus the
// household total.
func IncomeColumns(yy string) []string {
	var cols []string
	for _, b := range incomeBrackets {
		cols = append(cols, b+yy)
	}
	return append(cols, "TOT_HOUS"+yy)
}
