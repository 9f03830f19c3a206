package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Line numbers (1-based) of the flat cache layout:
// DEPEND, RDEPEND, SLOT, SRC_URI, RESTRICT, HOMEPAGE, LICENSE, DESCRIPTION, KEYWORDS,
// INHERITED, IUSE, REQUIRED_USE, PDEPEND, PROVIDE, ...
const (
	lineSlot        = 3
	lineHomepage    = 6
	lineLicense     = 7
	lineDescription = 8
	lineKeywords    = 9
	lineProvide     = 14
)

// FlatReader reads the positional one-field-per-line cache format
type FlatReader struct{}

// ReadSlotAndKeywords implements Reader
func (FlatReader) ReadSlotAndKeywords(path string) (string, string, error) {
	return ReadSlotAndKeywords(path)
}

// ReadMetadata implements Reader
func (FlatReader) ReadMetadata(path string, sink MetadataSink) error {
	return ReadMetadata(path, sink)
}

// ReadSlotAndKeywords returns line 3 (slot) and line 9 (keywords) of a flat cache file verbatim.
// A file with fewer than 9 lines is an error.
func ReadSlotAndKeywords(path string) (slot, keywords string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", &Error{Op: OpSlotKeywords, Path: path, Err: err}
	}
	defer f.Close()

	lr := newLineReader(f)
	if err := lr.skipTo(lineSlot); err != nil {
		return "", "", &Error{Op: OpSlotKeywords, Path: path, Err: err}
	}
	slot, err = lr.require()
	if err != nil {
		return "", "", &Error{Op: OpSlotKeywords, Path: path, Err: err}
	}
	if err := lr.skipTo(lineKeywords); err != nil {
		return "", "", &Error{Op: OpSlotKeywords, Path: path, Err: err}
	}
	keywords, err = lr.require()
	if err != nil {
		return "", "", &Error{Op: OpSlotKeywords, Path: path, Err: err}
	}
	return slot, keywords, nil
}

// ReadMetadata feeds homepage (line 6), license (7), description (8) and provide (14) to sink
// and stops after line 14. A file that ends after line 5 but before line 14 is not an error;
// the fields read so far stay in sink.
func ReadMetadata(path string, sink MetadataSink) error {
	f, err := os.Open(path)
	if err != nil {
		return &Error{Op: OpMetadata, Path: path, Err: err}
	}
	defer f.Close()

	lr := newLineReader(f)
	if err := lr.skipTo(lineHomepage); err != nil {
		return &Error{Op: OpMetadata, Path: path, Err: err}
	}

	for {
		nr := lr.lineNr + 1
		line, ok, err := lr.next()
		if err != nil {
			return &Error{Op: OpMetadata, Path: path, Err: err}
		}
		if !ok {
			return nil
		}
		switch nr {
		case lineHomepage:
			sink.SetHomepage(line)
		case lineLicense:
			sink.SetLicense(line)
		case lineDescription:
			sink.SetDescription(line)
		case lineProvide:
			sink.SetProvide(line)
			return nil
		}
	}
}

// lineReader yields physical lines with only the "\n" terminator removed
type lineReader struct {
	r      *bufio.Reader
	lineNr int // lines consumed so far
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (l *lineReader) next() (string, bool, error) {
	line, err := l.r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", false, nil
		}
		l.lineNr++
		return line, true, nil
	}
	if err != nil {
		return "", false, err
	}
	l.lineNr++
	return strings.TrimSuffix(line, "\n"), true, nil
}

// require reads the next line and fails if the file has ended
func (l *lineReader) require() (string, error) {
	want := l.lineNr + 1
	line, ok, err := l.next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("file ends before line %d", want)
	}
	return line, nil
}

// skipTo consumes lines until the next line to be read is nr
func (l *lineReader) skipTo(nr int) error {
	for l.lineNr < nr-1 {
		if _, err := l.require(); err != nil {
			return err
		}
	}
	return nil
}
