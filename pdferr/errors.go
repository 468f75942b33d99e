// Package pdferr defines the error kinds raised across the library, as
// opposed to control flow built on panic/recover. Malformed carries a
// byte offset, Filter the filter name and Validation the field name;
// Encryption and Usage carry only a message.
package pdferr

import "fmt"

// Malformed reports that the byte stream violates the PDF format at a
// locatable offset. Raised by the tokenizer, object parser and xref loader.
// The document parser may recover from it once via reconstruction.
type Malformed struct {
	Offset int64
	Msg    string
}

func (e *Malformed) Error() string {
	return fmt.Sprintf("malformed PDF at offset %d: %s", e.Offset, e.Msg)
}

// Malformedf builds a Malformed error with a formatted message.
func Malformedf(offset int64, format string, args ...interface{}) *Malformed {
	return &Malformed{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Encryption reports a wrong password, an unsupported V/R combination, or
// tampered U/O strings.
type Encryption struct {
	Msg string
}

func (e *Encryption) Error() string { return "encryption error: " + e.Msg }

func Encryptionf(format string, args ...interface{}) *Encryption {
	return &Encryption{Msg: fmt.Sprintf(format, args...)}
}

// Filter reports invalid filter parameters, truncated encoded data or an
// unknown filter name. Fatal to the containing object access, not to the
// Document.
type Filter struct {
	Name string
	Msg  string
}

func (e *Filter) Error() string { return fmt.Sprintf("filter %s: %s", e.Name, e.Msg) }

func Filterf(name, format string, args ...interface{}) *Filter {
	return &Filter{Name: name, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports that a typed dictionary violates its schema and the
// violation is not correctable, or auto-correct is disabled.
type Validation struct {
	Field        string
	Msg          string
	Correctable  bool
}

func (e *Validation) Error() string { return fmt.Sprintf("validation of %s: %s", e.Field, e.Msg) }

// Validationf builds a non-correctable Validation error with a formatted
// message.
func Validationf(field, format string, args ...interface{}) *Validation {
	return &Validation{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Usage reports caller misuse: adding an object owned by another Document,
// deleting the last revision, invalid reference arguments, and the like.
type Usage struct {
	Msg string
}

func (e *Usage) Error() string { return "usage error: " + e.Msg }

func Usagef(format string, args ...interface{}) *Usage {
	return &Usage{Msg: fmt.Sprintf(format, args...)}
}
