// This script walks a PDF's page tree and decompresses each page's
// content streams, leaving every other stream (images, fonts, ...)
// untouched.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gettalong/hexapdf-sub005/document"
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/schema"
	"github.com/gettalong/hexapdf-sub005/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("missing input file")
	}
	filePath := os.Args[1]

	src, f, err := document.FromFile(filePath)
	if err != nil {
		log.Fatalf("reading input: %s", err)
	}
	defer f.Close()

	doc, err := document.Open(src, document.Options{})
	if err != nil {
		log.Fatalf("reading input: %s", err)
	}
	defer doc.Close()

	catalog, ok := doc.Catalog()
	if !ok {
		log.Fatal("document has no /Root catalog")
	}
	pages, ok := catalog.Get("Pages")
	if !ok {
		log.Fatal("catalog has no /Pages")
	}
	root, ok := doc.Wrap(pages, schema.PageTreeNode)
	if !ok {
		log.Fatal("/Pages is not a dictionary")
	}

	if err := walkPages(doc, root); err != nil {
		log.Fatal(err)
	}

	output := filePath + ".decoded.pdf"
	out, err := os.Create(output)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	if err := writer.Write(doc, out, writer.DefaultOptions(doc)); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Written in", output)
}

// walkPages recurses a /Pages tree node, decompressing every leaf
// page's /Contents stream(s) in place (spec.md §4.7's ClassDef
// inheritance: a node is a leaf Page when its /Type is "Page", an
// intermediate node otherwise).
func walkPages(doc *document.Document, node schema.Typed) error {
	typeName, _ := node.Get("Type")
	if n, ok := typeName.(objects.Name); ok && n == "Page" {
		return decompressPage(doc, node)
	}

	kidsVal, ok := node.Get("Kids")
	if !ok {
		return nil
	}
	kids, ok := kidsVal.(objects.Array)
	if !ok {
		return nil
	}
	for _, k := range kids {
		ref, ok := k.(objects.Reference)
		if !ok {
			continue
		}
		raw, err := doc.Object(ref)
		if err != nil {
			continue
		}
		child, ok := doc.Wrap(raw, schema.PageTreeNode)
		if !ok {
			continue
		}
		if err := walkPages(doc, child); err != nil {
			return err
		}
	}
	return nil
}

func decompressPage(doc *document.Document, page schema.Typed) error {
	// Read /Contents directly off the raw dict rather than through
	// Get, which would resolve and memoize it as an inline value,
	// overwriting the indirect reference a content stream must keep
	// (spec.md §4.7: "Stream objects must always be indirect").
	contentsVal, ok := page.Dict.Get("Contents")
	if !ok {
		return nil
	}
	switch c := contentsVal.(type) {
	case objects.Reference:
		return decompressContentRef(doc, c)
	case objects.Array:
		for _, el := range c {
			if ref, ok := el.(objects.Reference); ok {
				if err := decompressContentRef(doc, ref); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func decompressContentRef(doc *document.Document, ref objects.Reference) error {
	raw, err := doc.Object(ref)
	if err != nil {
		return err
	}
	strm, ok := raw.(objects.Stream)
	if !ok {
		return nil
	}
	decoded, err := doc.DecodedStreamBytes(ref.Oid, ref.Gen, strm)
	if err != nil {
		return err
	}
	dict := strm.Dict.Clone().(objects.Dict)
	delete(dict, "Filter")
	delete(dict, "DecodeParms")
	doc.Set(ref, objects.Stream{Dict: dict, Data: objects.StreamData{Inline: decoded}})
	return nil
}
