// Package csvio reads and writes delimited text tables.
//
// Reading decodes the whole file through the configured (or detected)
// character encoding, parses it with encoding/csv, and enforces the
// rectangular-table invariant: a row with the wrong field count is an
// error, not a skip. Writing goes through a temp file in the target
// directory that is renamed into place only after a successful flush,
// so a failed run never leaves a partial output file.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/transform"

	"csvanon/internal/table"
)

// ReadOptions configure table loading.
type ReadOptions struct {
	// Encoding names the input character encoding. Empty means detect.
	Encoding string

	// Delimiter is the field separator. Zero means comma.
	Delimiter rune

	// HasHeader marks row 1 as the header. When false, columns get
	// synthetic column_<i> names.
	HasHeader bool
}

// WriteOptions configure table output.
type WriteOptions struct {
	// Encoding names the output character encoding. Empty means UTF-8.
	Encoding string

	// Delimiter is the field separator. Zero means comma.
	Delimiter rune
}

// ReadTable loads a delimited file into a Table.
//
// The whole dataset is held in memory; inputs at the intended scale are
// test fixtures, not warehouses. Errors cover: unreadable path,
// unsupported or undecodable encoding, ragged rows, and duplicate or
// blank header names.
func ReadTable(path string, opt ReadOptions) (table.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("read %s: %w", path, err)
	}

	encName := opt.Encoding
	if strings.TrimSpace(encName) == "" {
		encName = DetectEncoding(raw)
	}
	text, err := decode(raw, encName)
	if err != nil {
		return table.Table{}, fmt.Errorf("decode %s as %s: %w", path, encName, err)
	}

	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	// FieldsPerRecord 0: lock to the width of the first record so the
	// reader itself rejects ragged rows.
	r.FieldsPerRecord = 0

	records, err := r.ReadAll()
	if err != nil {
		return table.Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return table.Table{}, fmt.Errorf("parse %s: file is empty", path)
	}

	var t table.Table
	if opt.HasHeader {
		hdr := records[0]
		for i := range hdr {
			hdr[i] = strings.TrimSpace(hdr[i])
		}
		t = table.Table{Header: hdr, Rows: records[1:], HasHeader: true}
		if err := t.CheckHeader(); err != nil {
			return table.Table{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		t = table.Table{
			Header:    table.SyntheticHeader(len(records[0])),
			Rows:      records,
			HasHeader: false,
		}
	}

	if err := t.CheckRectangular(); err != nil {
		return table.Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// WriteTable writes a table to path, emitting the header row only when
// the table carries a real one.
//
// Write-to-temp-then-rename: the destination either ends up with the
// complete file or is left exactly as it was.
func WriteTable(path string, t table.Table, opt WriteOptions) (err error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	var out io.Writer = tmp
	var tw *transform.Writer
	if name := strings.TrimSpace(opt.Encoding); name != "" {
		enc, lerr := lookupEncoding(name)
		if lerr != nil {
			return lerr
		}
		if enc != nil {
			tw = transform.NewWriter(tmp, enc.NewEncoder())
			out = tw
		}
	}

	w := csv.NewWriter(out)
	w.Comma = delim

	if t.HasHeader {
		if werr := w.Write(t.Header); werr != nil {
			return fmt.Errorf("write %s: %w", path, werr)
		}
	}
	for _, row := range t.Rows {
		if werr := w.Write(row); werr != nil {
			return fmt.Errorf("write %s: %w", path, werr)
		}
	}
	w.Flush()
	if werr := w.Error(); werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}

	if tw != nil {
		if cerr := tw.Close(); cerr != nil {
			return fmt.Errorf("write %s: %w", path, cerr)
		}
	}
	if cerr := tmp.Close(); cerr != nil {
		return fmt.Errorf("write %s: %w", path, cerr)
	}
	if rerr := os.Rename(tmpName, path); rerr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, rerr)
	}
	return nil
}

// decode converts raw bytes from the named encoding to UTF-8 and strips
// a leading UTF-8 BOM if one survives.
func decode(raw []byte, encName string) ([]byte, error) {
	enc, err := lookupEncoding(encName)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(out, []byte{0xEF, 0xBB, 0xBF}), nil
}
