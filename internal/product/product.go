// Package product turns a resolved configuration chain into the single
// effective configuration the rest of the installer reads.
package product

import (
	"fmt"
	"io"
	"strings"

	"github.com/osbuild/product-config/internal/productregistry"
	"github.com/osbuild/product-config/internal/unit"
)

// Keys whose list values accumulate across the chain instead of being
// replaced. Everything else is last-writer-wins.
var additiveKeys = map[[2]string]bool{
	{"Payload", "updates_repositories"}:      true,
	{"Payload", "default_rpm_gpg_keys"}:      true,
	{"User Interface", "default_help_pages"}: true,
}

// EffectiveConfig is the merged configuration for the active product.
// It is built once by Merge and read-only afterwards; concurrent readers
// need no synchronization.
type EffectiveConfig struct {
	sections []*unit.Section
}

// MissingRequiredKeyError is returned when a key the schema requires is
// absent after merging.
type MissingRequiredKeyError struct {
	Section string
	Key     string
}

func (e *MissingRequiredKeyError) Error() string {
	return fmt.Sprintf("missing required key %q in section [%s]", e.Key, e.Section)
}

// Merge flattens a configuration chain, most general entry first. For
// every section/key the latest entry wins, except the additive list keys
// which concatenate in chain order with exact duplicates dropped.
// Unknown sections and keys pass through untouched.
func Merge(chain productregistry.Chain) *EffectiveConfig {
	merged := &EffectiveConfig{}

	for _, file := range chain {
		for _, src := range file.Sections {
			dst := merged.section(src.Name)
			if dst == nil {
				dst = &unit.Section{Name: src.Name, Values: map[string][]string{}}
				merged.sections = append(merged.sections, dst)
			}
			for _, key := range src.Keys {
				if _, exists := dst.Values[key]; !exists {
					dst.Keys = append(dst.Keys, key)
				}
				if additiveKeys[[2]string{src.Name, key}] {
					dst.Values[key] = appendUnique(dst.Values[key], src.Values[key])
				} else {
					dst.Values[key] = append([]string(nil), src.Values[key]...)
				}
			}
		}
	}

	return merged
}

func appendUnique(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range extra {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}

func (c *EffectiveConfig) section(name string) *unit.Section {
	for _, s := range c.sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Sections returns all section names in merge order.
func (c *EffectiveConfig) Sections() []string {
	names := make([]string, len(c.sections))
	for i, s := range c.sections {
		names[i] = s.Name
	}
	return names
}

// Keys returns the keys of a section in merge order.
func (c *EffectiveConfig) Keys(section string) []string {
	s := c.section(section)
	if s == nil {
		return nil
	}
	return append([]string(nil), s.Keys...)
}

// Get returns the scalar value of a key, with fallback when the key or
// its section is absent.
func (c *EffectiveConfig) Get(section, key, fallback string) string {
	if value, ok := c.section(section).Get(key); ok {
		return value
	}
	return fallback
}

// List returns the list value of a key; nil when absent.
func (c *EffectiveConfig) List(section, key string) []string {
	return c.section(section).List(key)
}

// ProductName returns the merged product name, the one key the schema
// requires.
func (c *EffectiveConfig) ProductName() (string, error) {
	name, ok := c.section("Product").Get("product_name")
	if !ok || name == "" {
		return "", &MissingRequiredKeyError{Section: "Product", Key: "product_name"}
	}
	return name, nil
}

// Dump writes the configuration back out in profile syntax, sections and
// keys in merge order. The output is deterministic: equal configurations
// dump byte-for-byte identically.
func (c *EffectiveConfig) Dump(w io.Writer) error {
	for i, s := range c.sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "[%s]\n", s.Name); err != nil {
			return err
		}
		for _, key := range s.Keys {
			lines := s.Values[key]
			if len(lines) == 1 && !strings.Contains(lines[0], "\n") {
				if _, err := fmt.Fprintf(w, "%s = %s\n", key, lines[0]); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s =\n", key); err != nil {
				return err
			}
			for _, line := range lines {
				if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
