package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Filter is a structured gallery query plus a pagination cursor.
//
// The pagination cursor (Limit, Offset) is excluded from the filter's
// Signature: two filters with the same signature are the same query on
// different pages.
type Filter struct {
	Tags          []string // record must carry ALL of these
	ExcludeTags   []string // record must carry NONE of these
	Model         string
	StarredOnly   bool
	Trashed       bool // show trashed records instead of active ones
	Uncategorized bool // records in no collection
	Collection    string
	Search        string // substring match against the prompt
	Since         string // "2006-01-02", inclusive lower bound on Date

	Limit  int64
	Offset int64
}

// Signature returns a canonical string identifying what is being viewed,
// with the pagination cursor stripped. Tag order is significant to the
// caller, so it is preserved as-is.
func (f Filter) Signature() string {
	var b strings.Builder
	b.WriteString("tags=")
	b.WriteString(strings.Join(f.Tags, ","))
	b.WriteString("|xtags=")
	b.WriteString(strings.Join(f.ExcludeTags, ","))
	b.WriteString("|model=")
	b.WriteString(f.Model)
	b.WriteString("|starred=")
	b.WriteString(strconv.FormatBool(f.StarredOnly))
	b.WriteString("|trashed=")
	b.WriteString(strconv.FormatBool(f.Trashed))
	b.WriteString("|uncat=")
	b.WriteString(strconv.FormatBool(f.Uncategorized))
	b.WriteString("|collection=")
	b.WriteString(f.Collection)
	b.WriteString("|search=")
	b.WriteString(f.Search)
	b.WriteString("|since=")
	b.WriteString(f.Since)
	return b.String()
}

// WithPage returns a copy of f with the given pagination cursor.
func (f Filter) WithPage(limit, offset int64) Filter {
	f.Limit = limit
	f.Offset = offset
	return f
}

// ParseSince resolves a user-facing period ("today", "7d", "2w", "all",
// "2006-01-02") to an inclusive date lower bound. "all" and "" resolve to
// the empty string, meaning no bound.
func ParseSince(since string, now time.Time) (string, error) {
	if since == "" || since == "all" {
		return "", nil
	}
	if since == "today" {
		return now.Format("2006-01-02"), nil
	}
	if n, ok := trimUnit(since, 'd'); ok {
		return now.AddDate(0, 0, -n).Format("2006-01-02"), nil
	}
	if n, ok := trimUnit(since, 'w'); ok {
		return now.AddDate(0, 0, -7*n).Format("2006-01-02"), nil
	}
	if d, err := time.Parse("2006-01-02", since); err == nil {
		return d.Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("invalid since %q: use 'today', '7d', '2w', or YYYY-MM-DD", since)
}

func trimUnit(s string, unit byte) (int, bool) {
	if len(s) < 2 || s[len(s)-1] != unit {
		return 0, false
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
