// Package config holds the explicit configuration threaded through a
// Document, replacing the teacher's process-wide mutable globals
// (spec.md §9 Design Note: "Global mutable state... Re-architect as an
// explicit Configuration value threaded through the Document, with a
// frozen default").
//
// Grounded on pdfcpu's pkg/pdfcpu/model.Configuration (a single struct of
// named options passed explicitly to API calls) rather than the
// teacher's own "constantize" table, which pdf.go builds once at
// package-init and never lets a caller override.
package config

// OnCorrectableError is invoked once per correctable validation issue
// (spec.md §4.7, §7: a "(message, correctable?)" event stream). Returning
// true asks the caller's auto-correct policy to fix the issue and keep
// going; returning false treats it as fatal even though it was marked
// correctable.
type OnCorrectableError func(message string, offset int64) (recover bool)

// Configuration is the frozen set of options spec.md §6 recognizes. A
// zero Configuration is invalid; use Default() and override individual
// fields.
type Configuration struct {
	// IOChunkSize is the filter-source chunk size in bytes
	// ("io.chunk_size", default 65536). No filter reads it; document.Open
	// and document.New only treat a zero value as "no Configuration
	// given" and substitute Default().
	IOChunkSize int

	// FlateCompression is the zlib compression level used when a stream
	// is re-encoded with FlateDecode ("filter.flate_compression", 0-9,
	// default 9).
	FlateCompression int

	// PredictorStrict is the "filter.predictor.strict" option. No
	// predictor decoder reads it: a decode whose output is not a whole
	// number of rows always fails, whatever its value.
	PredictorStrict bool

	// OnCorrectableError is consulted by Document.Validate for every
	// correctable issue ("parser.on_correctable_error").
	OnCorrectableError OnCorrectableError

	// FilterMap/EncryptionFilterMap/TypeMap/SubtypeMap are the
	// name-to-class dispatch tables spec.md §6 lists
	// ("filter.map", "encryption.filter_map", "object.type_map",
	// "object.subtype_map"). They are carried here but nothing reads
	// them: filter lookup uses the filter package's own registry, and
	// Document.Wrap dispatches through copies of schema.TypeMap and
	// schema.SubtypeMap.
	FilterMap           map[string]string
	EncryptionFilterMap map[string]string
	TypeMap             map[string]string
	SubtypeMap          map[string]string

	// AutoCorrect runs schema validators' correctable fixups in place
	// during Document.Validate, instead of only reporting them.
	AutoCorrect bool
}

// Default returns hexapdf-sub005's frozen default configuration. Callers
// needing a different policy should copy it (Configuration is a plain
// value type) and override individual fields; mutating the return value
// of a second Default() call never affects any other Document.
func Default() Configuration {
	return Configuration{
		IOChunkSize:      65536,
		FlateCompression: 9,
		PredictorStrict:  true,
		AutoCorrect:      true,
	}
}
