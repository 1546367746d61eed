// Package groundtruth reads the per-recording pose tables written next to
// each image directory.
//
// A table is plain text: a header line naming the columns followed by one
// row per frame, fields separated by runs of blanks. Fixed-width tables fall
// out of the same rule as long as no value contains a blank.
package groundtruth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ivlev/vodataset/internal/dataerr"
)

// Row is one frame's ground-truth pose.
type Row struct {
	X              float64
	Y              float64
	Theta          float64
	ThetaCorrected float64
}

type field int

const (
	fieldX field = iota
	fieldY
	fieldTheta
	fieldThetaCorrected
	numFields
)

var fieldNames = [numFields]string{"x", "y", "theta", "theta_correct"}

// aliases maps a normalized header name to the semantic field it carries.
// Recordings were logged by different tool versions, hence the spread.
var aliases = map[string]field{
	"x":               fieldX,
	"pos_x":           fieldX,
	"y":               fieldY,
	"pos_y":           fieldY,
	"theta":           fieldTheta,
	"yaw":             fieldTheta,
	"theta_correct":   fieldThetaCorrected,
	"theta_corrected": fieldThetaCorrected,
	"thetacorrect":    fieldThetaCorrected,
	"thetacorrected":  fieldThetaCorrected,
	"yaw_corrected":   fieldThetaCorrected,
}

// ReadFile parses the table stored at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dataerr.NewDataFormatError(path, 0, err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		var formatErr *dataerr.DataFormatError
		if errors.As(err, &formatErr) {
			formatErr.Path = path
			return nil, formatErr
		}
		return nil, dataerr.NewDataFormatError(path, 0, err)
	}
	return rows, nil
}

// Parse reads a table from r. Blank lines are skipped. Unknown columns are
// ignored; all four pose columns must be present.
//
// pandas dumps carry an unnamed leading index column. Data rows with exactly
// one more field than the header are accepted and the first field dropped.
func Parse(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		columns [numFields]int
		width   int
		header  bool
		rows    []Row
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if !header {
			cols, err := resolveHeader(fields)
			if err != nil {
				return nil, dataerr.NewDataFormatError("", lineNo, err)
			}
			columns, width, header = cols, len(fields), true
			continue
		}

		switch len(fields) {
		case width:
		case width + 1:
			fields = fields[1:]
		default:
			return nil, dataerr.NewDataFormatError("", lineNo,
				fmt.Errorf("expected %d fields, got %d", width, len(fields)))
		}

		var values [numFields]float64
		for f := field(0); f < numFields; f++ {
			v, err := strconv.ParseFloat(fields[columns[f]], 64)
			if err != nil {
				return nil, dataerr.NewDataFormatError("", lineNo,
					fmt.Errorf("column %s: %w", fieldNames[f], err))
			}
			values[f] = v
		}
		rows = append(rows, Row{
			X:              values[fieldX],
			Y:              values[fieldY],
			Theta:          values[fieldTheta],
			ThetaCorrected: values[fieldThetaCorrected],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, dataerr.NewDataFormatError("", lineNo, err)
	}
	if !header {
		return nil, dataerr.NewDataFormatError("", 0, errors.New("empty table, no header"))
	}
	return rows, nil
}

func resolveHeader(names []string) ([numFields]int, error) {
	var columns [numFields]int
	var seen [numFields]bool

	for i, name := range names {
		f, ok := aliases[normalize(name)]
		if !ok {
			continue
		}
		if seen[f] {
			return columns, fmt.Errorf("duplicate column for %s: %q", fieldNames[f], name)
		}
		columns[f], seen[f] = i, true
	}

	var missing []string
	for f := field(0); f < numFields; f++ {
		if !seen[f] {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return columns, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "-", "_")
}
