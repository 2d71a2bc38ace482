// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

// Package chain implements the wire codec for filament chain records:
// the small key=value text stored in each remote record's content
// field. A stored file is a singly linked chain of such records; the
// head carries the file's name, total size, and extent count, and
// every record may carry the id of its successor.
//
// The format is line oriented. Lines starting with "#" are comments;
// the first of them is the protocol marker that identifies records
// written by filament. Unknown keys are ignored so that newer writers
// remain readable by older readers.
package chain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Marker is the comment line that opens every record written by
// filament. The catalog lister uses it to tell filament records apart
// from unrelated traffic in the same channel. It is emitted verbatim
// by Encode and skipped, like any other comment line, by Decode.
const Marker = "# filament chain; do not edit this record"

// Placeholder is the content of a record whose attachments have been
// uploaded but whose chain metadata has not been written yet. Uploads
// create every record with this content first and patch in the real
// encoding once all successor ids are known. It lacks the marker, so
// a record orphaned by an interrupted upload never appears in the
// catalog.
const Placeholder = "# filament upload in progress"

// Record is the decoded metadata of one remote chain record. Field
// presence is semantic (a stored empty file has size 0, which is a
// present value), so optional fields are pointers rather than zero
// values.
type Record struct {
	// Name is the original filename. Present exactly on the head
	// record of a chain.
	Name *string

	// Size is the total byte length of the stored file across all
	// extents. Head only.
	Size *uint64

	// Extents is the total number of extents across the whole chain,
	// independent of how many records it spans. Head only.
	Extents *uint64

	// Next is the id of the successor record. Absent on the tail.
	Next *uint64
}

// Head returns a record carrying the fields required of a chain head.
// The caller sets Next afterward when the chain has more than one
// record.
func Head(name string, size, extents uint64) Record {
	return Record{Name: &name, Size: &size, Extents: &extents}
}

// IsHead reports whether the record carries every field required of a
// chain head: name, size, and extent count.
func (r Record) IsHead() bool {
	return r.Name != nil && r.Size != nil && r.Extents != nil
}

// MissingHeadFields lists the head-required fields absent from the
// record, in wire-key form. Empty for a valid head.
func (r Record) MissingHeadFields() []string {
	var missing []string
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.Size == nil {
		missing = append(missing, "size")
	}
	if r.Extents == nil {
		missing = append(missing, "len")
	}
	return missing
}

// Encode renders the record as marker line plus key=value lines, in
// the fixed key order name, size, len, next, omitting absent fields.
// Names cannot contain newlines; the format has no escaping.
func (r Record) Encode() (string, error) {
	if r.Name != nil && strings.ContainsRune(*r.Name, '\n') {
		return "", fmt.Errorf("chain: name %q contains a newline", *r.Name)
	}
	var b strings.Builder
	b.WriteString(Marker)
	b.WriteByte('\n')
	if r.Name != nil {
		fmt.Fprintf(&b, "name=%s\n", *r.Name)
	}
	if r.Size != nil {
		fmt.Fprintf(&b, "size=%d\n", *r.Size)
	}
	if r.Extents != nil {
		fmt.Fprintf(&b, "len=%d\n", *r.Extents)
	}
	if r.Next != nil {
		fmt.Fprintf(&b, "next=%d\n", *r.Next)
	}
	return b.String(), nil
}

// Decode parses record content. Comment lines (leading "#") and blank
// lines are skipped; a trailing carriage return on a line is ignored.
// Decoding an empty string yields a record with all fields absent, not
// an error. A non-comment, non-blank line without "=" or a numeric
// value that does not parse yields a *MalformedRecordError. Unknown
// keys are ignored. The name value runs to the end of the line and may
// itself contain "=".
func Decode(content string) (Record, error) {
	var r Record
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Record{}, &MalformedRecordError{Line: line, Err: errNoSeparator}
		}
		switch key {
		case "name":
			v := value
			r.Name = &v
		case "size":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Record{}, &MalformedRecordError{Line: line, Err: err}
			}
			r.Size = &n
		case "len":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Record{}, &MalformedRecordError{Line: line, Err: err}
			}
			r.Extents = &n
		case "next":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Record{}, &MalformedRecordError{Line: line, Err: err}
			}
			r.Next = &n
		default:
			// Unknown key: ignored for forward compatibility.
		}
	}
	return r, nil
}

// HasMarker reports whether the content's first line is the protocol
// marker. The catalog lister filters on this before decoding.
func HasMarker(content string) bool {
	first, _, _ := strings.Cut(content, "\n")
	return strings.TrimSuffix(first, "\r") == Marker
}

var errNoSeparator = errors.New(`line has no "=" separator`)

// MalformedRecordError reports record content that does not parse: a
// data line without a "=" separator, or a numeric field whose value
// does not parse. It carries the offending line for diagnostics.
type MalformedRecordError struct {
	// Line is the input line that failed to parse.
	Line string

	// Err is the underlying parse failure.
	Err error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("chain: malformed record line %q: %v", e.Line, e.Err)
}

// Unwrap returns the underlying parse error so errors.Is and errors.As
// can walk the chain.
func (e *MalformedRecordError) Unwrap() error { return e.Err }
