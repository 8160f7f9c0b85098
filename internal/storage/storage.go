// Package storage checks a product's partitioning layout against its
// declared storage constraints before the layout reaches the
// partitioning planner.
package storage

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/osbuild/product-config/internal/common"
	"github.com/osbuild/product-config/internal/partition"
	"github.com/osbuild/product-config/internal/unit"
)

// Constraints is the parsed [Storage Constraints] section.
type Constraints struct {
	// RootDeviceTypes is the allow-list of schemes acceptable for the
	// root volume. Empty means any scheme is fine.
	RootDeviceTypes []string

	// MustNotBeOnRoot lists mount points that need a volume of their
	// own. A mount point with no explicit partitioning rule lives on
	// the root volume and therefore violates this.
	MustNotBeOnRoot []string

	// RequiredSizes are lower bounds that win over whatever the
	// default layout commits to.
	RequiredSizes []partition.RequiredSize

	// SwapRecommended is handed through to the planner; it is not
	// enforced here.
	SwapRecommended bool
}

// ParseConstraints interprets a merged [Storage Constraints] section. A
// nil section yields the permissive defaults.
func ParseConstraints(sec *unit.Section) (Constraints, error) {
	constraints := Constraints{SwapRecommended: true}
	if sec == nil {
		return constraints, nil
	}

	constraints.RootDeviceTypes = sec.List("root_device_types")
	constraints.MustNotBeOnRoot = sec.List("must_not_be_on_root")

	if lines := sec.List("req_partition_sizes"); len(lines) > 0 {
		required, err := partition.ParseRequiredSizes(lines)
		if err != nil {
			return Constraints{}, err
		}
		constraints.RequiredSizes = required
	}

	if raw, ok := sec.Get("swap_is_recommended"); ok {
		value, err := common.ParseBool(raw)
		if err != nil {
			return Constraints{}, fmt.Errorf("swap_is_recommended: %v", err)
		}
		constraints.SwapRecommended = value
	}

	return constraints, nil
}

// ConstraintViolation is one storage rule that contradicts the product's
// constraints.
type ConstraintViolation struct {
	Mountpoint string
	Msg        string
}

func (e *ConstraintViolation) Error() string {
	if e.Mountpoint == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Mountpoint, e.Msg)
}

// RuleResult annotates one partitioning rule with its validation outcome.
type RuleResult struct {
	Rule partition.Rule
	OK   bool
}

// ValidatedConfig is the outcome of validating a partitioning layout. It
// is built once and read-only afterwards.
type ValidatedConfig struct {
	Scheme          string
	Rules           []RuleResult
	SwapRecommended bool
	Valid           bool
}

// Validate checks the default scheme and partitioning rules against the
// constraints. All checks run and every violation is collected; the
// returned error, when non-nil, wraps one *ConstraintViolation per
// finding. The annotated config is returned either way so callers can
// report which rules passed.
func Validate(scheme string, rules []partition.Rule, constraints Constraints) (*ValidatedConfig, error) {
	var violations *multierror.Error

	byMountpoint := make(map[string]int, len(rules))
	results := make([]RuleResult, len(rules))
	for i, rule := range rules {
		byMountpoint[rule.Mountpoint] = i
		results[i] = RuleResult{Rule: rule, OK: true}
	}

	if len(constraints.RootDeviceTypes) > 0 {
		supported := false
		for _, t := range constraints.RootDeviceTypes {
			if t == scheme {
				supported = true
				break
			}
		}
		if !supported {
			violations = multierror.Append(violations, &ConstraintViolation{
				Msg: fmt.Sprintf("unsupported root scheme %q, supported: %s",
					scheme, strings.Join(constraints.RootDeviceTypes, ", ")),
			})
		}
	}

	for _, mountpoint := range constraints.MustNotBeOnRoot {
		if _, ok := byMountpoint[mountpoint]; !ok {
			violations = multierror.Append(violations, &ConstraintViolation{
				Mountpoint: mountpoint,
				Msg:        "mount point requires a dedicated volume",
			})
		}
	}

	for _, required := range constraints.RequiredSizes {
		i, ok := byMountpoint[required.Mountpoint]
		if !ok {
			// no explicit rule; the requirement itself is the
			// commitment
			continue
		}
		committed := results[i].Rule.FixedSize
		if committed == 0 {
			committed = results[i].Rule.MinSize
		}
		if committed == 0 {
			// unspecified rules inherit the requirement
			continue
		}
		if committed < required.Size {
			results[i].OK = false
			violations = multierror.Append(violations, &ConstraintViolation{
				Mountpoint: required.Mountpoint,
				Msg: fmt.Sprintf("below minimum required size: required %s, committed %s",
					required.Size, committed),
			})
		}
	}

	err := violations.ErrorOrNil()
	return &ValidatedConfig{
		Scheme:          scheme,
		Rules:           results,
		SwapRecommended: constraints.SwapRecommended,
		Valid:           err == nil,
	}, err
}
