package document

import (
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/schema"
)

// ValidationIssue pairs a schema.Issue with the indirect object it was
// found on, since Validate walks the whole object graph rather than one
// dictionary at a time.
type ValidationIssue struct {
	Ref   objects.Reference
	Issue schema.Issue
}

// Validate implements spec.md §4.6's validation orchestration: every live
// object is wrapped under its registered class (the same dispatch Wrap
// uses) and run through schema.ValidateDict. For every correctable issue
// it finds, Config.OnCorrectableError is consulted ("parser.on_correctable_error",
// spec.md §6) to decide whether to apply the fix; autoCorrect is the
// fallback policy used when no callback is installed. An object's
// correctable issues are applied together — if every one of them is
// accepted, the whole dict is re-validated with auto-correct on — so a
// lone declined issue, or any non-correctable issue, leaves that
// object's correctable issues unfixed and reported alongside it.
func (d *Document) Validate(autoCorrect bool) []ValidationIssue {
	var all []ValidationIssue
	d.Each(func(ref objects.Reference, value objects.Object) {
		t, ok := d.Wrap(value, nil)
		if !ok {
			return
		}
		issues := t.Validate(false)
		if len(issues) == 0 {
			return
		}

		accepted := true
		for _, iss := range issues {
			if !iss.Correctable {
				accepted = false
				continue
			}
			ok := autoCorrect
			if d.Config.OnCorrectableError != nil {
				ok = d.Config.OnCorrectableError(iss.Message, 0)
			}
			if !ok {
				accepted = false
			}
		}

		if accepted {
			t.Validate(true)
			return
		}
		for _, iss := range issues {
			all = append(all, ValidationIssue{Ref: ref, Issue: iss})
		}
	})
	return all
}
