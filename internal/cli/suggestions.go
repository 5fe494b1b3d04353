package cli

import (
	"fmt"
	"strings"

	"github.com/recall-project/recall/internal/rank"
	"github.com/recall-project/recall/pkg/color"
	"github.com/recall-project/recall/pkg/model"
)

// findRecord resolves a record by unique ID prefix, falling back to an
// exact name match. On failure it prints a "did you mean" hint built
// from relevance ranking.
func (sh *shell) findRecord(query string) (*model.Record, bool) {
	records := sh.session.Records()

	var matches []*model.Record
	for _, r := range records {
		if strings.HasPrefix(string(r.ID), query) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		for _, r := range records {
			if strings.EqualFold(r.Name, query) {
				matches = append(matches, r)
			}
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], true
	case 0:
		fmt.Fprintln(sh.out, color.Errorf("record %q not found", query))
		if hint := suggestRecords(query, records); hint != "" {
			fmt.Fprintln(sh.out, color.Dim("  "+hint))
		}
		return nil, false
	default:
		fmt.Fprintln(sh.out, color.Errorf("record %q is ambiguous (%d matches)", query, len(matches)))
		return nil, false
	}
}

// findEvent resolves a timeline event by unique ID prefix.
func (sh *shell) findEvent(query string) (*model.AuditEvent, bool) {
	var matches []*model.AuditEvent
	for _, e := range sh.session.Events() {
		if strings.HasPrefix(string(e.ID), query) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], true
	case 0:
		fmt.Fprintln(sh.out, color.Errorf("event %q not found", query))
		fmt.Fprintln(sh.out, color.Dim("  Run "+color.Code("timeline")+" to see event IDs."))
		return nil, false
	default:
		fmt.Fprintln(sh.out, color.Errorf("event %q is ambiguous (%d matches)", query, len(matches)))
		return nil, false
	}
}

// suggestRecords builds a "Did you mean?" hint from the closest-ranked
// record names. Returns "" when nothing comes close.
func suggestRecords(query string, records []*model.Record) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	ranked := rank.Rank(query, records,
		func(r *model.Record) []string { return []string{r.Name} },
		func(r *model.Record) string { return r.Name },
	)
	if len(ranked) == 0 {
		return ""
	}
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}

	var suggestions []string
	for _, r := range ranked {
		suggestions = append(suggestions, fmt.Sprintf("%s (%s)", color.Info(r.Name), shortID(string(r.ID))))
	}

	hint := "Did you mean"
	if len(suggestions) > 1 {
		hint += " one of"
	}
	return fmt.Sprintf("%s: %s?", hint, strings.Join(suggestions, ", "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
