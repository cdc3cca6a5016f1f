package tomledit

import (
	"fmt"
	"strconv"
	"strings"
)

// parseIntegerLiteral converts an already-validated TOML integer token
// (decimal, 0x/0o/0b prefixed, signed, underscore-separated) to its value.
func parseIntegerLiteral(raw string) (int64, error) {
	clean := strings.ReplaceAll(raw, "_", "")
	neg := false
	if len(clean) > 0 && (clean[0] == '+' || clean[0] == '-') {
		neg = clean[0] == '-'
		clean = clean[1:]
	}

	var v uint64
	var err error
	switch {
	case strings.HasPrefix(clean, "0x"):
		v, err = strconv.ParseUint(clean[2:], 16, 64)
	case strings.HasPrefix(clean, "0o"):
		v, err = strconv.ParseUint(clean[2:], 8, 64)
	case strings.HasPrefix(clean, "0b"):
		v, err = strconv.ParseUint(clean[2:], 2, 64)
	default:
		v, err = strconv.ParseUint(clean, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}

// parseFloatLiteral converts an already-validated TOML float token
// (including inf/-inf/nan spellings and underscore separators) to its
// value.
func parseFloatLiteral(raw string) (float64, error) {
	clean := strings.ReplaceAll(raw, "_", "")
	switch clean {
	case "inf", "+inf":
		return posInf(), nil
	case "-inf":
		return negInf(), nil
	case "nan", "+nan", "-nan":
		return nanValue(), nil
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q: %w", raw, err)
	}
	return v, nil
}

func posInf() float64 { v, _ := strconv.ParseFloat("+Inf", 64); return v }
func negInf() float64 { v, _ := strconv.ParseFloat("-Inf", 64); return v }
func nanValue() float64 { v, _ := strconv.ParseFloat("NaN", 64); return v }

// classifyDateTimeLiteral builds the right Date/Time/DateTime Item for an
// already-validated datetime token.
func classifyDateTimeLiteral(raw string) Item {
	if strings.ContainsAny(raw, "Tt ") || strings.ContainsAny(raw, "Zz") ||
		(strings.Count(raw, "-") >= 2 && strings.Contains(raw, ":")) {
		return parseFullDateTime(raw)
	}
	if strings.Contains(raw, ":") {
		return parseTimeOnly(raw)
	}
	return parseDateOnly(raw)
}

func parseDateOnly(raw string) *Date {
	var y, m, d int
	fmt.Sscanf(raw, "%04d-%02d-%02d", &y, &m, &d)
	return NewDateRaw(y, m, d, raw)
}

func parseTimeOnly(raw string) *Time {
	var h, mi, s, ns int
	main := raw
	if dot := strings.Index(raw, "."); dot >= 0 {
		main = raw[:dot]
		frac := raw[dot+1:]
		for len(frac) < 9 {
			frac += "0"
		}
		fmt.Sscanf(frac[:9], "%d", &ns)
	}
	parts := strings.Split(main, ":")
	if len(parts) >= 2 {
		h, _ = strconv.Atoi(parts[0])
		mi, _ = strconv.Atoi(parts[1])
	}
	if len(parts) == 3 {
		s, _ = strconv.Atoi(parts[2])
	}
	return NewTimeRaw(h, mi, s, ns, raw)
}

func parseFullDateTime(raw string) *DateTime {
	return NewDateTimeRaw(raw)
}
