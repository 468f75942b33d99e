// This tool reads a PDF file and decodes all of its streams in place
// (dropping their /Filter chain), writing the result to a new file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gettalong/hexapdf-sub005/document"
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/writer"
)

func check(err error) {
	if err != nil {
		fmt.Println("fatal error:", err)
		os.Exit(1)
	}
}

func main() {
	flag.Parse()
	input := flag.Arg(0)
	if input == "" {
		fmt.Println("usage: decode <input.pdf>")
		os.Exit(1)
	}
	fmt.Println(input)

	src, f, err := document.FromFile(input)
	check(err)
	defer f.Close()

	doc, err := document.Open(src, document.Options{})
	check(err)
	defer doc.Close()

	doc.Each(func(ref objects.Reference, value objects.Object) {
		strm, ok := value.(objects.Stream)
		if !ok {
			return
		}
		decoded, err := doc.DecodedStreamBytes(ref.Oid, ref.Gen, strm)
		if err != nil {
			return
		}
		dict := strm.Dict.Clone().(objects.Dict)
		delete(dict, "Filter")
		delete(dict, "DecodeParms")
		doc.Set(ref, objects.Stream{Dict: dict, Data: objects.StreamData{Inline: decoded}})
	})

	output := input + ".dec.pdf"
	out, err := os.Create(output)
	check(err)
	defer out.Close()

	check(writer.Write(doc, out, writer.DefaultOptions(doc)))
	fmt.Println("Done,", output)
}
