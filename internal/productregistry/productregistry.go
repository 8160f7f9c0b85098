// Package productregistry discovers the available product configuration
// files and resolves the active product into an ordered inheritance
// chain: built-in defaults first, then base products, then the active
// product, then an optional local override.
package productregistry

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/osbuild/product-config/internal/unit"
)

//go:embed defaults.conf
var defaultsConf string

// A base-product chain longer than this is rejected even if it never
// revisits a name.
const maxChainDepth = 32

// Chain is an ordered sequence of configuration files, most general
// first. Merging it front to back yields the effective configuration.
type Chain []*unit.File

// Registry indexes all discovered product configuration files by
// product name.
type Registry struct {
	defaults       *unit.File
	products       map[string]*unit.File
	defaultProduct string
	override       *unit.File
}

// UnknownProductError is returned when a requested or referenced product
// has no configuration file.
type UnknownProductError struct {
	Name  string
	Known []string
}

func (e *UnknownProductError) Error() string {
	if e.Name == "" {
		return "no product requested and no default product configured"
	}
	return fmt.Sprintf("unknown product %q, available products: %s", e.Name, strings.Join(e.Known, ", "))
}

// BaseProductCycleError is returned when following [Base Product]
// pointers revisits a product already in the chain.
type BaseProductCycleError struct {
	Path []string
}

func (e *BaseProductCycleError) Error() string {
	return fmt.Sprintf("base product cycle: %s", strings.Join(e.Path, " -> "))
}

// New scans the given directories for *.conf product files and indexes
// them. Directories that do not exist are skipped; two files declaring
// the same product name are an error. The built-in defaults are always
// present and never discovered from disk.
func New(dirs ...string) (*Registry, error) {
	defaults, err := unit.Parse("<builtin defaults>", strings.NewReader(defaultsConf))
	if err != nil {
		panic(fmt.Sprintf("built-in defaults do not parse, this is a programming error: %v", err))
	}

	reg := &Registry{
		defaults: defaults,
		products: make(map[string]*unit.File),
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".conf") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			file, err := unit.ParseFile(path)
			if err != nil {
				return nil, err
			}
			name, ok := productName(file)
			if !ok {
				return nil, fmt.Errorf("%s: missing [Product] product_name", path)
			}
			if existing, exists := reg.products[name]; exists {
				return nil, fmt.Errorf("product %q declared by both %s and %s", name, existing.Path, path)
			}
			reg.products[name] = file
		}
	}

	return reg, nil
}

// SetDefaultProduct designates the product resolved when no name is
// requested.
func (r *Registry) SetDefaultProduct(name string) {
	r.defaultProduct = name
}

// SetLocalOverride parses the file at path and appends it as the most
// specific entry of every resolved chain.
func (r *Registry) SetLocalOverride(path string) error {
	file, err := unit.ParseFile(path)
	if err != nil {
		return err
	}
	r.override = file
	return nil
}

// List returns the names of all discovered products, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.products))
	for name := range r.products {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds the configuration chain for the named product, or for
// the designated default product when name is empty.
func (r *Registry) Resolve(name string) (Chain, error) {
	if name == "" {
		name = r.defaultProduct
	}
	active, ok := r.products[name]
	if !ok {
		return nil, &UnknownProductError{Name: name, Known: r.List()}
	}

	chain := Chain{active}
	visited := map[string]bool{name: true}
	path := []string{name}

	current := active
	for {
		base, ok := baseProductName(current)
		if !ok {
			break
		}
		if visited[base] {
			return nil, &BaseProductCycleError{Path: append(path, base)}
		}
		if len(path) >= maxChainDepth {
			return nil, fmt.Errorf("base product chain of %q exceeds depth %d", name, maxChainDepth)
		}
		baseFile, ok := r.products[base]
		if !ok {
			return nil, &UnknownProductError{Name: base, Known: r.List()}
		}
		chain = append(Chain{baseFile}, chain...)
		visited[base] = true
		path = append(path, base)
		current = baseFile
	}

	chain = append(Chain{r.defaults}, chain...)
	if r.override != nil {
		chain = append(chain, r.override)
	}
	return chain, nil
}

func productName(file *unit.File) (string, bool) {
	name, ok := file.Section("Product").Get("product_name")
	return name, ok && name != ""
}

func baseProductName(file *unit.File) (string, bool) {
	name, ok := file.Section("Base Product").Get("product_name")
	return name, ok && name != ""
}
