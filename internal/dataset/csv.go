package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type delimitedLoader struct{}

func (delimitedLoader) CanLoad(string) bool { return true }

func (delimitedLoader) Records(path string, opt Options) ([]string, [][]string, error) {
	delim := opt.Delimiter
	if delim == 0 {
		d, err := sniffDelimiter(path)
		if err != nil {
			return nil, nil, err
		}
		delim = d
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	var records [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return header, records, nil
}

// sniffDelimiter picks tab for .tsv files; otherwise the most frequent of ',', ';'
// and tab in the header line, defaulting to ','.
func sniffDelimiter(path string) (rune, error) {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t', nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read header line: %w", err)
	}
	best, bestCount := ',', 0
	for _, c := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, nil
}
