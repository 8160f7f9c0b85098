package common

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a data size in bytes.
type Size uint64

const (
	KiB Size = 1024
	MiB      = 1024 * KiB
	GiB      = 1024 * MiB
	TiB      = 1024 * GiB
)

var sizeUnits = map[string]Size{
	"B":   1,
	"KiB": KiB,
	"MiB": MiB,
	"GiB": GiB,
	"TiB": TiB,
}

// ParseSize parses a size literal of the form "<number> <unit>", e.g.
// "6 GiB". A bare number is taken as bytes. Units are the binary ones
// used by the product profiles (B, KiB, MiB, GiB, TiB).
func ParseSize(s string) (Size, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, fmt.Errorf("invalid size literal %q", s)
	}

	number, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size literal %q: %v", s, err)
	}
	if len(fields) == 1 {
		return Size(number), nil
	}

	unit, ok := sizeUnits[fields[1]]
	if !ok {
		return 0, fmt.Errorf("invalid size literal %q: unrecognized unit %q", s, fields[1])
	}
	return Size(number) * unit, nil
}

// String formats the size using the largest unit that divides it evenly,
// so values round-trip through ParseSize.
func (s Size) String() string {
	for _, unit := range []struct {
		name string
		size Size
	}{{"TiB", TiB}, {"GiB", GiB}, {"MiB", MiB}, {"KiB", KiB}} {
		if s >= unit.size && s%unit.size == 0 {
			return fmt.Sprintf("%d %s", uint64(s/unit.size), unit.name)
		}
	}
	return fmt.Sprintf("%d B", uint64(s))
}

// ParseBool understands the boolean spellings accepted by the installer's
// configuration files.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value %q", s)
}
