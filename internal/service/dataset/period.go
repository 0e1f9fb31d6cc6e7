package dataset

import (
	"sort"
	"strconv"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
)

// BuildPeriodTree derives the Year -> Quarter -> Month hierarchy from the
// calendar's own date range. Quarters are plain calendar quarters, present
// only when the calendar covers at least one of their days.
func BuildPeriodTree(days []hr.CalendarDay) []hr.PeriodYear {
	months := make(map[int]map[int]map[time.Month]bool)
	for _, d := range days {
		year := d.Date.Year()
		q := quarterOf(d.Date.Month())
		if months[year] == nil {
			months[year] = make(map[int]map[time.Month]bool)
		}
		if months[year][q] == nil {
			months[year][q] = make(map[time.Month]bool)
		}
		months[year][q][d.Date.Month()] = true
	}

	years := make([]int, 0, len(months))
	for y := range months {
		years = append(years, y)
	}
	sort.Ints(years)

	tree := make([]hr.PeriodYear, 0, len(years))
	for _, y := range years {
		node := hr.PeriodYear{Year: strconv.Itoa(y)}
		for q := 1; q <= 4; q++ {
			monthSet, ok := months[y][q]
			if !ok {
				continue
			}
			quarter := hr.PeriodQuarter{Name: "Q" + strconv.Itoa(q)}
			for m := time.January; m <= time.December; m++ {
				if monthSet[m] {
					quarter.Months = append(quarter.Months, m.String())
				}
			}
			node.Quarters = append(node.Quarters, quarter)
		}
		tree = append(tree, node)
	}
	return tree
}

func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}

// ResolveKeys expands a period selection into the set of qualifying
// (year, month-name) keys. A nil map means the selection imposes no
// restriction; an empty map matches nothing.
func ResolveKeys(tree []hr.PeriodYear, sel hr.PeriodSelection) map[string]bool {
	if sel.Year == "" || sel.Year == hr.FilterAll {
		return nil
	}

	keys := make(map[string]bool)
	for _, y := range tree {
		if y.Year != sel.Year {
			continue
		}
		for _, q := range y.Quarters {
			if sel.Quarter != "" && sel.Quarter != hr.FilterAll && q.Name != sel.Quarter {
				continue
			}
			for _, m := range q.Months {
				if !monthSelected(sel, m) {
					continue
				}
				keys[y.Year+"_"+m] = true
			}
		}
	}
	return keys
}

// monthSelected applies the defaulting rule: no explicit months means every
// month in scope qualifies.
func monthSelected(sel hr.PeriodSelection, month string) bool {
	if len(sel.Months) == 0 {
		return true
	}
	for _, m := range sel.Months {
		if m == month || m == hr.FilterAll {
			return true
		}
	}
	return false
}
