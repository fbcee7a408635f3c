package device

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func parseFloats(args []string) ([]float32, error) {
	vals := make([]float32, 0, len(args))
	for _, arg := range args {
		for _, item := range strings.Split(arg, ",") {
			if item = strings.TrimSpace(item); item == "" {
				continue
			}
			val, err := strconv.ParseFloat(item, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q: %v", item, err)
			}
			vals = append(vals, float32(val))
		}
	}
	return vals, nil
}

func parseUint(arg string, name string, max uint64) (uint32, error) {
	val, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	if val > max {
		return 0, fmt.Errorf("%s out of range: %d > %d", name, val, max)
	}
	return uint32(val), nil
}

// readTrainingSet reads rows of inputs followed by outputs.
// Lines starting with # are comments.
func readTrainingSet(r io.Reader, inputs, outputs int) (in, out []float32, rows int, err error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = inputs + outputs
	reader.TrimLeadingSpace = true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return in, out, rows, nil
		}
		if err != nil {
			return nil, nil, 0, err
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("row %d: %w", rows+1, err)
		}
		if len(vals) != inputs+outputs {
			return nil, nil, 0, fmt.Errorf("row %d: expect %d values, got %d", rows+1, inputs+outputs, len(vals))
		}
		in = append(in, vals[:inputs]...)
		out = append(out, vals[inputs:]...)
		rows++
	}
}
