// Package partition interprets the partitioning blocks of a product
// profile: the default mount-point layout and the minimum sizes the
// product requires of it.
package partition

import (
	"fmt"
	"strings"

	"github.com/osbuild/product-config/internal/common"
)

// Rule describes the default layout for one mount point. A rule carries
// either a fixed size, a minimum size, or neither ("unspecified", the
// downstream planner picks); never both, which the line grammar cannot
// express.
type Rule struct {
	Mountpoint string
	MinSize    common.Size
	FixedSize  common.Size
}

// Unspecified reports whether the rule leaves the size to the planner.
func (r Rule) Unspecified() bool {
	return r.MinSize == 0 && r.FixedSize == 0
}

func (r Rule) String() string {
	switch {
	case r.FixedSize != 0:
		return fmt.Sprintf("%s (size %s)", r.Mountpoint, r.FixedSize)
	case r.MinSize != 0:
		return fmt.Sprintf("%s (min %s)", r.Mountpoint, r.MinSize)
	}
	return r.Mountpoint
}

// RequiredSize is one entry of req_partition_sizes: the smallest size the
// product will accept for a mount point, whatever the layout says.
type RequiredSize struct {
	Mountpoint string
	Size       common.Size
}

// SyntaxError describes a malformed partitioning line.
type SyntaxError struct {
	Line string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid partitioning rule %q: %s", e.Line, e.Msg)
}

func checkMountpoint(line, mountpoint string, seen map[string]bool) error {
	if !strings.HasPrefix(mountpoint, "/") {
		return &SyntaxError{Line: line, Msg: fmt.Sprintf("mount point %q is not an absolute path", mountpoint)}
	}
	if seen[mountpoint] {
		return &SyntaxError{Line: line, Msg: fmt.Sprintf("duplicate mount point %q", mountpoint)}
	}
	seen[mountpoint] = true
	return nil
}

// ParseRules parses the lines of a default_partitioning value, in order.
// Each line is `<mount-point>` optionally followed by `(min <size>)` or
// `(size <size>)`.
func ParseRules(lines []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(lines))
	seen := map[string]bool{}

	for _, line := range lines {
		mountpoint, spec, hasSpec := strings.Cut(line, "(")
		mountpoint = strings.TrimSpace(mountpoint)
		if err := checkMountpoint(line, mountpoint, seen); err != nil {
			return nil, err
		}

		rule := Rule{Mountpoint: mountpoint}
		if hasSpec {
			spec = strings.TrimSpace(spec)
			if !strings.HasSuffix(spec, ")") {
				return nil, &SyntaxError{Line: line, Msg: "unterminated size specification"}
			}
			qualifier, sizeStr, found := strings.Cut(strings.TrimSpace(spec[:len(spec)-1]), " ")
			if !found {
				return nil, &SyntaxError{Line: line, Msg: "size specification needs a qualifier and a size"}
			}
			size, err := common.ParseSize(sizeStr)
			if err != nil {
				return nil, &SyntaxError{Line: line, Msg: err.Error()}
			}
			switch qualifier {
			case "min":
				rule.MinSize = size
			case "size":
				rule.FixedSize = size
			default:
				return nil, &SyntaxError{Line: line, Msg: fmt.Sprintf("unknown qualifier %q", qualifier)}
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ParseRequiredSizes parses the lines of a req_partition_sizes value.
// Each line is `<mount-point> <size>`.
func ParseRequiredSizes(lines []string) ([]RequiredSize, error) {
	required := make([]RequiredSize, 0, len(lines))
	seen := map[string]bool{}

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &SyntaxError{Line: line, Msg: "expected a mount point and a size"}
		}
		if err := checkMountpoint(line, fields[0], seen); err != nil {
			return nil, err
		}
		size, err := common.ParseSize(strings.Join(fields[1:], " "))
		if err != nil {
			return nil, &SyntaxError{Line: line, Msg: err.Error()}
		}
		required = append(required, RequiredSize{Mountpoint: fields[0], Size: size})
	}
	return required, nil
}
