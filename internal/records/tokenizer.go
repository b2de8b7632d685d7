package records

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const byteOrderMark = '\uFEFF'

type parseState int

const (
	beginningOfField parseState = iota
	outsideQuotes
	inQuotes
	possibleEndQuote
)

// Tokenizer splits a character stream into delimited records.
//
// CR and LF are independent terminators; a CRLF pair closes a record and
// then forms a blank line, which is skipped. Malformed quoting never fails:
// a quote followed by ordinary text is kept literally. The exact text
// consumed for each record is available from RawLine so callers can copy
// the input through byte for byte.
type Tokenizer struct {
	r         *bufio.Reader
	delimiter rune
	quote     rune
	started   bool
	fields    []string
	buf       strings.Builder
	raw       strings.Builder
}

// NewTokenizer creates a tokenizer over r.
func NewTokenizer(r io.Reader, delimiter, quote rune) *Tokenizer {
	return &Tokenizer{
		r:         bufio.NewReader(r),
		delimiter: delimiter,
		quote:     quote,
	}
}

// Delimiter returns the field delimiter.
func (t *Tokenizer) Delimiter() rune { return t.delimiter }

// Quote returns the quote character.
func (t *Tokenizer) Quote() rune { return t.quote }

// Fields returns the fields of the most recent record. The slice is reused
// by the next call to Read.
func (t *Tokenizer) Fields() []string { return t.fields }

// RawLine returns the text consumed by the last call to Read, including
// skipped blank lines and the terminator. After exhaustion it holds the
// trailing text that did not form a record.
func (t *Tokenizer) RawLine() string { return t.raw.String() }

// Read advances to the next record. It returns false once the stream holds
// no further records.
func (t *Tokenizer) Read() (bool, error) {
	t.fields = t.fields[:0]
	t.buf.Reset()
	t.raw.Reset()

	if !t.started {
		t.started = true
		if err := t.skipByteOrderMark(); err != nil {
			return false, err
		}
	}

	state := beginningOfField
	for {
		c, _, err := t.r.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return false, err
			}
			if len(t.fields) == 0 && t.buf.Len() == 0 {
				return false, nil
			}
			t.flush()
			return true, nil
		}

		t.raw.WriteRune(c)
		switch state {
		case beginningOfField:
			switch {
			case c == t.delimiter:
				t.fields = append(t.fields, "")
			case c == t.quote:
				state = inQuotes
			case isTerminator(c):
				if len(t.fields) != 0 || t.buf.Len() != 0 {
					t.flush()
					return true, nil
				}
			default:
				t.buf.WriteRune(c)
				state = outsideQuotes
			}

		case outsideQuotes:
			switch {
			case c == t.delimiter:
				t.flush()
				state = beginningOfField
			case isTerminator(c):
				t.flush()
				return true, nil
			default:
				t.buf.WriteRune(c)
			}

		case inQuotes:
			if c == t.quote {
				state = possibleEndQuote
			} else {
				t.buf.WriteRune(c)
			}

		case possibleEndQuote:
			switch {
			case c == t.delimiter:
				t.flush()
				state = beginningOfField
			case c == t.quote:
				t.buf.WriteRune(c)
				state = inQuotes
			case isTerminator(c):
				t.flush()
				return true, nil
			default:
				t.buf.WriteRune(t.quote)
				t.buf.WriteRune(c)
				state = outsideQuotes
			}
		}
	}
}

func (t *Tokenizer) flush() {
	t.fields = append(t.fields, t.buf.String())
	t.buf.Reset()
}

func (t *Tokenizer) skipByteOrderMark() error {
	c, _, err := t.r.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if c != byteOrderMark {
		return t.r.UnreadRune()
	}
	return nil
}

func isTerminator(c rune) bool {
	return c == '\n' || c == '\r'
}

// SplitRawLine separates a raw line into its body and its final terminator
// character, if any.
func SplitRawLine(raw string) (body, terminator string) {
	if n := len(raw); n > 0 && (raw[n-1] == '\n' || raw[n-1] == '\r') {
		return raw[:n-1], raw[n-1:]
	}
	return raw, ""
}
