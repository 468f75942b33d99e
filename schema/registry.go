package schema

import "github.com/gettalong/hexapdf-sub005/objects"

func direct(v objects.Object) func() objects.Object {
	return func() objects.Object { return v.Clone() }
}

func dictDefault() func() objects.Object {
	return func() objects.Object { return objects.Dict{} }
}

// Well-known classes, grounded on the teacher's model/*.go field lists
// (Catalog in model/model.go, PageTree/Page in model/model.go,
// Trailer/Info in model/files.go-adjacent basic.go, XRefStream/ObjStm
// per spec.md §7).
var (
	Trailer = &ClassDef{
		Fields: []Descriptor{
			{Name: "Size", Required: true, Kinds: []Kind{IntegerKind}},
			{Name: "Root", Required: true, Kinds: []Kind{DictKind}, MustBeIndirect: true},
			{Name: "Info", Kinds: []Kind{DictKind}, MustBeIndirect: true},
			{Name: "ID", Kinds: []Kind{ArrayKind}},
			{Name: "Encrypt", Kinds: []Kind{DictKind}},
			{Name: "Prev", Kinds: []Kind{IntegerKind}},
			{Name: "XRefStm", Kinds: []Kind{IntegerKind}},
		},
	}

	Info = &ClassDef{
		Fields: []Descriptor{
			{Name: "Title", Kinds: []Kind{TextStringKind}, Convert: convertTextString},
			{Name: "Author", Kinds: []Kind{TextStringKind}, Convert: convertTextString},
			{Name: "Subject", Kinds: []Kind{TextStringKind}, Convert: convertTextString},
			{Name: "Keywords", Kinds: []Kind{TextStringKind}, Convert: convertTextString},
			{Name: "Creator", Kinds: []Kind{TextStringKind}, Convert: convertTextString},
			{Name: "Producer", Kinds: []Kind{TextStringKind}, Convert: convertTextString},
			{Name: "CreationDate", Kinds: []Kind{DateKind}},
			{Name: "ModDate", Kinds: []Kind{DateKind}},
		},
	}

	Catalog = &ClassDef{
		TypeName: "Catalog",
		Fields: []Descriptor{
			{Name: "Type", Required: true, Kinds: []Kind{NameKind}, Default: direct(objects.Name("Catalog"))},
			{Name: "Pages", Required: true, Kinds: []Kind{DictKind}, MustBeIndirect: true},
			{Name: "Version", Kinds: []Kind{NameKind}},
			{Name: "AcroForm", Kinds: []Kind{DictKind}},
			{Name: "Names", Kinds: []Kind{DictKind}},
			{Name: "Outlines", Kinds: []Kind{DictKind}},
			{Name: "PageLayout", Kinds: []Kind{NameKind}},
			{Name: "PageMode", Kinds: []Kind{NameKind}},
			{Name: "ViewerPreferences", Kinds: []Kind{DictKind}},
			{Name: "Lang", Kinds: []Kind{TextStringKind}, Convert: convertTextString},
		},
	}

	PageTreeNode = &ClassDef{
		TypeName: "Pages",
		Fields: []Descriptor{
			{Name: "Type", Required: true, Kinds: []Kind{NameKind}, Default: direct(objects.Name("Pages"))},
			{Name: "Parent", Kinds: []Kind{DictKind}, MustBeIndirect: true},
			{Name: "Kids", Required: true, Kinds: []Kind{ArrayKind}, Default: func() objects.Object { return objects.Array{} }},
			{Name: "Count", Required: true, Kinds: []Kind{IntegerKind}, Default: direct(objects.Integer(0))},
			{Name: "Resources", Kinds: []Kind{DictKind}},
			{Name: "MediaBox", Kinds: []Kind{RectangleKind}},
			{Name: "Rotate", Kinds: []Kind{IntegerKind}},
		},
	}

	Page = &ClassDef{
		TypeName: "Page",
		Base:     PageTreeNode,
		Fields: []Descriptor{
			{Name: "Type", Required: true, Kinds: []Kind{NameKind}, Default: direct(objects.Name("Page"))},
			{Name: "Contents", Kinds: []Kind{StreamKind, ArrayKind}},
			{Name: "Annots", Kinds: []Kind{ArrayKind}},
			{Name: "CropBox", Kinds: []Kind{RectangleKind}},
		},
		Validators: []func(objects.Dict) []Issue{validatePageMediaBoxInherited},
	}

	XRefStream = &ClassDef{
		TypeName:        "XRef",
		RequireIndirect: true,
		Fields: []Descriptor{
			{Name: "Type", Required: true, Kinds: []Kind{NameKind}, Default: direct(objects.Name("XRef"))},
			{Name: "Size", Required: true, Kinds: []Kind{IntegerKind}},
			{Name: "W", Required: true, Kinds: []Kind{ArrayKind}},
			{Name: "Index", Kinds: []Kind{ArrayKind}},
			{Name: "Prev", Kinds: []Kind{IntegerKind}},
			{Name: "Root", Kinds: []Kind{DictKind}, MustBeIndirect: true},
			{Name: "Info", Kinds: []Kind{DictKind}, MustBeIndirect: true},
			{Name: "Encrypt", Kinds: []Kind{DictKind}},
			{Name: "ID", Kinds: []Kind{ArrayKind}},
			{Name: "Filter", Kinds: []Kind{NameKind, ArrayKind}},
			{Name: "DecodeParms", Kinds: []Kind{DictKind, ArrayKind}},
		},
	}

	ObjectStream = &ClassDef{
		TypeName:        "ObjStm",
		RequireIndirect: true,
		Fields: []Descriptor{
			{Name: "Type", Required: true, Kinds: []Kind{NameKind}, Default: direct(objects.Name("ObjStm"))},
			{Name: "N", Required: true, Kinds: []Kind{IntegerKind}},
			{Name: "First", Required: true, Kinds: []Kind{IntegerKind}},
			{Name: "Extends", Kinds: []Kind{DictKind}, MustBeIndirect: true},
			{Name: "Filter", Kinds: []Kind{NameKind, ArrayKind}},
			{Name: "DecodeParms", Kinds: []Kind{DictKind, ArrayKind}},
		},
	}

	// GenericStream covers any Stream with no more specific class match
	// (document.Wrap's shape-based fallback, spec.md §4.6 (iv)).
	GenericStream = &ClassDef{
		RequireIndirect: true,
		Fields: []Descriptor{
			{Name: "Length", Required: true, Kinds: []Kind{IntegerKind}},
			{Name: "Filter", Kinds: []Kind{NameKind, ArrayKind}},
			{Name: "DecodeParms", Kinds: []Kind{DictKind, ArrayKind}},
		},
	}
)

func convertTextString(raw objects.Object) (objects.Object, bool) {
	switch v := raw.(type) {
	case objects.ByteString:
		return objects.DecodeTextString([]byte(v)), true
	default:
		return nil, false
	}
}

// validatePageMediaBoxInherited checks that a leaf Page either declares
// its own /MediaBox or has one reachable by walking /Parent, per
// PDF32000 7.7.3.3's inheritance rule. It is correctable: the default
// US-Letter box is filled in when auto-correct is on, matching the
// "inject required defaults" step spec.md §4.7 describes even though
// MediaBox's own Descriptor is not itself Required (it is only required
// after inheritance resolution, which the descriptor engine alone
// cannot express).
func validatePageMediaBoxInherited(d objects.Dict) []Issue {
	if _, ok := d.Get("MediaBox"); ok {
		return nil
	}
	if _, ok := d.Get("Parent"); ok {
		// Inheritance may still supply it; the document-level validator
		// walks /Parent chains, which this dict-local check cannot do.
		return nil
	}
	return []Issue{{
		Field:       "MediaBox",
		Message:     "page has no /MediaBox and no /Parent to inherit one from",
		Correctable: true,
	}}
}

// TypeMap / SubtypeMap are the default name→class dispatch tables
// spec.md §6 names ("object.type_map", "object.subtype_map"), consulted
// by document.Wrap before falling back to shape-based dispatch.
var TypeMap = map[objects.Name]*ClassDef{
	"Catalog": Catalog,
	"Pages":   PageTreeNode,
	"Page":    Page,
	"XRef":    XRefStream,
	"ObjStm":  ObjectStream,
}

var SubtypeMap = map[objects.Name]*ClassDef{}
