package templates

import (
	"fmt"
	"net/url"
	"strconv"
)

func formatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// sortURL links to the list ordered by field, flipping the direction when
// field is already the active sort.
func sortURL(page ExperimentsPage, field string) string {
	desc := false
	if page.Sort == field {
		desc = !page.Descending
	}
	q := url.Values{}
	q.Set("sort", field)
	q.Set("desc", strconv.FormatBool(desc))
	return "/experiments?" + q.Encode()
}
