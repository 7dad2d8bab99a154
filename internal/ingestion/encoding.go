package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// encodingAttempts is the fixed fallback order for decoding source files.
// Exports arrive from several tools: Screaming Frog writes UTF-8, Adobe
// prepends a BOM, Excel re-saves produce windows-1252 or UTF-16.
var encodingAttempts = []string{"utf-8-sig", "utf-8", "utf-16", "windows-1252", "iso-8859-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeAs decodes raw bytes under one named encoding. An error means this
// attempt does not apply (wrong BOM, invalid byte sequences) and the caller
// should move to the next encoding in the chain.
func decodeAs(name string, data []byte) (string, error) {
	switch name {
	case "utf-8-sig":
		if !bytes.HasPrefix(data, utf8BOM) {
			return "", fmt.Errorf("no UTF-8 BOM")
		}
		stripped := data[len(utf8BOM):]
		if !utf8.Valid(stripped) {
			return "", fmt.Errorf("invalid UTF-8 after BOM")
		}
		return string(stripped), nil
	case "utf-8":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid UTF-8")
		}
		return string(data), nil
	case "utf-16":
		if len(data) < 2 {
			return "", fmt.Errorf("no UTF-16 BOM")
		}
		var enc encoding.Encoding
		switch {
		case data[0] == 0xFE && data[1] == 0xFF:
			enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
		case data[0] == 0xFF && data[1] == 0xFE:
			enc = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
		default:
			return "", fmt.Errorf("no UTF-16 BOM")
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	case "windows-1252":
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		// The decoder substitutes undefined bytes instead of failing.
		if bytes.ContainsRune(decoded, utf8.RuneError) {
			return "", fmt.Errorf("undefined windows-1252 bytes")
		}
		return string(decoded), nil
	case "iso-8859-1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	default:
		return "", fmt.Errorf("unknown encoding %s", name)
	}
}

// sniffDelimiter picks the delimiter with the most occurrences in the leading
// lines. Spanish exports commonly come semicolon-separated, and Adobe files
// lead with a metadata preamble, so a single line is not enough to decide.
func sniffDelimiter(head string) rune {
	best, bestCount := ',', strings.Count(head, ",")
	for _, cand := range []rune{';', '\t'} {
		if n := strings.Count(head, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

// headLines returns the first n lines of text for delimiter sniffing.
func headLines(text string, n int) string {
	idx := 0
	for i := 0; i < n; i++ {
		next := strings.IndexAny(text[idx:], "\n")
		if next < 0 {
			return text
		}
		idx += next + 1
	}
	return text[:idx]
}

// readTable decodes and parses a CSV file body, walking the encoding chain
// until one attempt yields a parseable table with at least a header row.
// When every attempt fails the file is rejected with an EncodingError.
func readTable(file string, data []byte) ([][]string, error) {
	var lastErr error
	for _, name := range encodingAttempts {
		text, err := decodeAs(name, data)
		if err != nil {
			lastErr = err
			continue
		}

		reader := csv.NewReader(strings.NewReader(text))
		reader.Comma = sniffDelimiter(headLines(text, 20))
		reader.FieldsPerRecord = -1

		rows, err := reader.ReadAll()
		if err != nil {
			lastErr = err
			continue
		}
		if len(rows) == 0 {
			lastErr = fmt.Errorf("empty table")
			continue
		}
		return rows, nil
	}
	return nil, &EncodingError{File: file, Tried: encodingAttempts, Cause: lastErr}
}
