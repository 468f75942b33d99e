package schema

import (
	"fmt"

	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// Resolver mediates indirect reference resolution and must-be-indirect
// enforcement, the two operations a dictionary field access needs from
// the owning Document (spec.md §3: "resolution is always mediated by
// the Document against the current revision chain"). Implemented by
// document.Document; kept as a narrow interface here so this package
// never imports document (which imports schema).
type Resolver interface {
	Resolve(ref objects.Reference) (objects.Object, bool)
	// MakeIndirect stores v as a fresh indirect object and returns a
	// Reference to it, used when a must-be-indirect field currently
	// holds a direct value.
	MakeIndirect(v objects.Object) objects.Reference
}

// Get implements spec.md §3's dict[name] lookup: (i) resolve reference
// if any, (ii) materialize Default if absent, (iii) apply Convert if the
// raw shape matches, memoizing the converted value back into d so the
// next read is O(1) (spec.md §4.7: "memoized by storing the converted
// Value back into the mapping").
func Get(c *ClassDef, d objects.Dict, r Resolver, name objects.Name) (objects.Object, bool) {
	desc, hasDesc := FieldByName(c, name)

	raw, present := d.Get(name)
	if !present {
		if hasDesc && desc.Default != nil {
			v := desc.Default()
			d.Set(name, v)
			return v, true
		}
		return nil, false
	}

	resolved := raw
	if ref, ok := raw.(objects.Reference); ok {
		if v, ok2 := r.Resolve(ref); ok2 {
			resolved = v
		} else {
			resolved = objects.Null{}
		}
	}

	if hasDesc && desc.Convert != nil {
		if converted, ok := desc.Convert(resolved); ok {
			d.Set(name, converted)
			return converted, true
		}
	}

	if resolved != raw {
		// Memoize the resolved (but unconverted) value too, so repeat
		// reads of a field that merely pointed at an indirect object
		// skip the resolve step next time.
		d.Set(name, resolved)
	}
	return resolved, true
}

// EnsureIndirect implements the must-be-indirect half of validation
// (spec.md §4.7 (iii)): if desc.MustBeIndirect and d[name] is currently
// a direct value, replace it with a Reference via r.MakeIndirect.
func EnsureIndirect(d objects.Dict, r Resolver, desc Descriptor) {
	if !desc.MustBeIndirect {
		return
	}
	raw, ok := d.Get(desc.Name)
	if !ok {
		return
	}
	if _, isRef := raw.(objects.Reference); isRef {
		return
	}
	d.Set(desc.Name, r.MakeIndirect(raw))
}

// Issue is one validation finding, spec.md §4.7/§7's "(message,
// correctable?) pair".
type Issue struct {
	Field       string
	Message     string
	Correctable bool
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (correctable=%v)", i.Field, i.Message, i.Correctable)
}

// ValidateDict runs every inherited Descriptor plus Validators against d,
// per spec.md §4.7: inject required defaults, reject type-mismatched
// values, enforce must-be-indirect, run custom validators. autoCorrect
// lets a correctable issue mutate d and continue instead of failing.
func ValidateDict(c *ClassDef, d objects.Dict, r Resolver, autoCorrect bool) []Issue {
	var issues []Issue
	for _, desc := range AllFields(c) {
		raw, present := d.Get(desc.Name)
		if !present {
			if desc.Default != nil {
				if autoCorrect {
					d.Set(desc.Name, desc.Default())
				}
				continue
			}
			if desc.Required {
				issues = append(issues, Issue{
					Field:       string(desc.Name),
					Message:     "required field is missing",
					Correctable: false,
				})
			}
			continue
		}

		resolved := raw
		if ref, ok := raw.(objects.Reference); ok {
			if v, ok2 := r.Resolve(ref); ok2 {
				resolved = v
			} else {
				resolved = objects.Null{}
			}
		}

		if len(desc.Kinds) > 0 {
			matched := false
			for _, k := range desc.Kinds {
				if k.Matches(resolved) {
					matched = true
					break
				}
			}
			if !matched {
				issues = append(issues, Issue{
					Field:       string(desc.Name),
					Message:     fmt.Sprintf("unexpected type %T", resolved),
					Correctable: false,
				})
			}
		}

		if desc.MustBeIndirect {
			if _, isRef := raw.(objects.Reference); !isRef {
				issue := Issue{
					Field:       string(desc.Name),
					Message:     "value must be an indirect reference",
					Correctable: true,
				}
				if autoCorrect {
					d.Set(desc.Name, r.MakeIndirect(raw))
					continue
				}
				issues = append(issues, issue)
			}
		}
	}

	if c != nil {
		for _, v := range c.Validators {
			issues = append(issues, v(d)...)
		}
	}
	if len(issues) > 0 {
		log.Debug.Printf("schema: %d issue(s) validating dict\n", len(issues))
	}
	return issues
}
