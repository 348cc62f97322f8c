package payload

import (
	"fmt"
	"strconv"
	"time"

	"ticketleap-admin/lib/scrapers/ticketleap/datefmt"
)

type DateRange struct {
	Start time.Time
	End   time.Time
}

func DatePrefix(index int) string {
	return fmt.Sprintf("dates-%d-", index)
}

// DateRow renders a performance date as the row at index of the "dates"
// formset.
func DateRow(index int, start, end time.Time) Fields {
	prefix := DatePrefix(index)
	startDate, startTime, startAmpm := datefmt.FormParts(start)
	endDate, endTime, endAmpm := datefmt.FormParts(end)

	return NewFields(
		Field{Name: prefix + "start_date", Value: startDate},
		Field{Name: prefix + "start_time", Value: startTime},
		Field{Name: prefix + "start_ampm", Value: startAmpm},
		Field{Name: prefix + "end_date", Value: endDate},
		Field{Name: prefix + "end_time", Value: endTime},
		Field{Name: prefix + "end_ampm", Value: endAmpm},
	)
}

// ManagementForm renders the hidden fields Django expects alongside a
// formset called prefix.
func ManagementForm(prefix string, total, initial int) Fields {
	return NewFields(
		Field{Name: prefix + "-TOTAL_FORMS", Value: strconv.Itoa(total)},
		Field{Name: prefix + "-INITIAL_FORMS", Value: strconv.Itoa(initial)},
		Field{Name: prefix + "-MIN_NUM_FORMS", Value: "0"},
		Field{Name: prefix + "-MAX_NUM_FORMS", Value: "1000"},
	)
}

// DateRows renders the full "dates" formset for a list of ranges.
func DateRows(dates []DateRange) Fields {
	out := ManagementForm("dates", len(dates), 0)
	for i, d := range dates {
		out.Merge(DateRow(i, d.Start, d.End))
	}
	return out
}
