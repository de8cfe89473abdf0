package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	separatorPattern = regexp.MustCompile(`[\s,;]+`)
	symbolPattern    = regexp.MustCompile(`^(0[xX][0-9a-fA-F]+|[0-9]+)$`)
)

func ValidateGeneratorPoly(poly int) error {
	if poly < 3 {
		return fmt.Errorf("generator polynomial must be at least 3 (got %d)", poly)
	}

	if poly%2 == 0 {
		return fmt.Errorf("generator polynomial must be odd (got %d)", poly)
	}

	return nil
}

func ValidateCodecParams(order, blockSize, messageSize int) error {
	if blockSize > order-1 {
		return fmt.Errorf("block size %d is too large, must be less than field order %d", blockSize, order)
	}

	if messageSize < 1 {
		return fmt.Errorf("message size must be positive (got %d)", messageSize)
	}

	if blockSize <= messageSize {
		return fmt.Errorf("message size %d is too large, must be less than block size %d", messageSize, blockSize)
	}

	return nil
}

func ValidateRuns(runs int) error {
	if runs < 1 || runs > 1_000_000 {
		return fmt.Errorf("runs must be between 1 and 1000000 (got %d)", runs)
	}

	return nil
}

func ParseSymbols(input string, order int) ([]int, error) {
	input = SanitizeInput(input)
	if input == "" {
		return nil, fmt.Errorf("symbol list cannot be empty")
	}

	fields := separatorPattern.Split(input, -1)
	symbols := make([]int, 0, len(fields))
	for i, field := range fields {
		if field == "" {
			continue
		}

		if !symbolPattern.MatchString(field) {
			return nil, fmt.Errorf("symbol %d is not a number: %q", i+1, field)
		}

		var v int64
		var err error
		if len(field) > 2 && (field[1] == 'x' || field[1] == 'X') {
			v, err = strconv.ParseInt(field[2:], 16, 64)
		} else {
			v, err = strconv.ParseInt(field, 10, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i+1, err)
		}

		if v >= int64(order) {
			return nil, fmt.Errorf("symbol %d is %d, must be less than field order %d", i+1, v, order)
		}

		symbols = append(symbols, int(v))
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("symbol list cannot be empty")
	}

	return symbols, nil
}

func FormatSymbols(symbols []int, hex bool) string {
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		if hex {
			parts[i] = fmt.Sprintf("0x%X", s)
		} else {
			parts[i] = strconv.Itoa(s)
		}
	}

	return strings.Join(parts, " ")
}

func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.Join(lines, "\n")
}
