package cache

import (
	"errors"
	"os"
	"strings"
)

// MD5DictReader reads the KEY=value layout of metadata/md5-cache
type MD5DictReader struct{}

// ReadSlotAndKeywords returns the SLOT and KEYWORDS values. Missing keys read as empty,
// but a file carrying neither is rejected.
func (MD5DictReader) ReadSlotAndKeywords(path string) (string, string, error) {
	fields, err := readDict(path)
	if err != nil {
		return "", "", &Error{Op: OpSlotKeywords, Path: path, Err: err}
	}
	slot, hasSlot := fields["SLOT"]
	keywords, hasKeywords := fields["KEYWORDS"]
	if !hasSlot && !hasKeywords {
		return "", "", &Error{Op: OpSlotKeywords, Path: path, Err: errors.New("no SLOT or KEYWORDS entry")}
	}
	return slot, keywords, nil
}

// ReadMetadata feeds HOMEPAGE, LICENSE, DESCRIPTION and PROVIDE to sink when present
func (MD5DictReader) ReadMetadata(path string, sink MetadataSink) error {
	fields, err := readDict(path)
	if err != nil {
		return &Error{Op: OpMetadata, Path: path, Err: err}
	}
	if v, ok := fields["HOMEPAGE"]; ok {
		sink.SetHomepage(v)
	}
	if v, ok := fields["LICENSE"]; ok {
		sink.SetLicense(v)
	}
	if v, ok := fields["DESCRIPTION"]; ok {
		sink.SetDescription(v)
	}
	if v, ok := fields["PROVIDE"]; ok {
		sink.SetProvide(v)
	}
	return nil
}

var dictKeys = map[string]bool{
	"SLOT": true, "KEYWORDS": true, "HOMEPAGE": true, "LICENSE": true, "DESCRIPTION": true, "PROVIDE": true,
}

// readDict collects the keys this package cares about; the first occurrence wins
func readDict(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fields := make(map[string]string, len(dictKeys))
	lr := newLineReader(f)
	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return fields, nil
		}
		key, value, found := strings.Cut(line, "=")
		if !found || !dictKeys[key] {
			continue
		}
		if _, seen := fields[key]; !seen {
			fields[key] = value
		}
	}
}
