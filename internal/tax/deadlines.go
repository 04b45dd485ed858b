package tax

import (
	"sort"
	"time"
)

type Deadline struct {
	Title       string    `json:"title"`
	DueDate     time.Time `json:"due_date"`
	Description string    `json:"description"`
}

// UpcomingDeadlines lists the next statutory remittance dates. PAYE, Housing
// Levy and SHIF fall due on the 9th of the following month, NSSF on the 15th.
// A date already past this month rolls to the next.
func UpcomingDeadlines(now time.Time) []Deadline {
	deadlines := []Deadline{
		{
			Title:       "PAYE Remittance",
			DueDate:     nextDeadline(now, 9),
			Description: "Pay As You Earn for previous month",
		},
		{
			Title:       "Housing Levy",
			DueDate:     nextDeadline(now, 9),
			Description: "Affordable Housing Levy remittance",
		},
		{
			Title:       "SHIF Contribution",
			DueDate:     nextDeadline(now, 9),
			Description: "Social Health Insurance Fund",
		},
		{
			Title:       "NSSF Contribution",
			DueDate:     nextDeadline(now, 15),
			Description: "National Social Security Fund",
		},
	}

	sort.Slice(deadlines, func(i, j int) bool {
		return deadlines[i].DueDate.Before(deadlines[j].DueDate)
	})
	return deadlines
}

func nextDeadline(now time.Time, day int) time.Time {
	deadline := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
	if deadline.Before(now) {
		deadline = deadline.AddDate(0, 1, 0)
	}
	return deadline
}
