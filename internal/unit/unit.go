// Package unit parses a single product configuration file into an ordered
// section/key structure. Values stay raw here; typed interpretation
// (quantities, booleans, partition rules) happens in the consumers.
package unit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// File is the parsed form of one configuration file. It is built once by
// Parse and treated as read-only afterwards.
type File struct {
	Path     string
	Sections []*Section
}

// Section holds the keys of one [Section Name] block in input order. A
// value is one or more lines: a single line for scalar keys, multiple
// lines for keys continued with indented list items.
type Section struct {
	Name   string
	Keys   []string
	Values map[string][]string
}

// Section returns the named section, or nil if the file does not have it.
func (f *File) Section(name string) *Section {
	for _, s := range f.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Get returns the scalar value of a key. Multi-line values are joined
// with newlines, which no scalar key legitimately contains.
func (s *Section) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	lines, ok := s.Values[key]
	if !ok {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// List returns the value of a key as its ordered lines. A scalar value is
// a one-element list; an absent key is nil.
func (s *Section) List(key string) []string {
	if s == nil {
		return nil
	}
	return s.Values[key]
}

// ParseError describes a malformed configuration file, with enough
// position information to fix it without re-running.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// ParseFile reads and parses the configuration file at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(path, f)
}

// Parse parses configuration file text. The path is only used for error
// reporting. Parsing is pure: the same text always yields an identical
// structure.
func Parse(path string, r io.Reader) (*File, error) {
	file := &File{Path: path}

	var section *Section
	var lastKey string
	seenSections := map[string]bool{}

	lineno := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), " \t")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fail := func(format string, args ...interface{}) (*File, error) {
			return nil, &ParseError{Path: path, Line: lineno, Msg: fmt.Sprintf(format, args...)}
		}

		switch {
		case line[0] == ' ' || line[0] == '\t':
			// continuation of the previous key's value
			if section == nil || lastKey == "" {
				return fail("continuation line without a preceding key")
			}
			section.Values[lastKey] = append(section.Values[lastKey], trimmed)

		case line[0] == '[':
			if !strings.HasSuffix(line, "]") {
				return fail("malformed section header %q", line)
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return fail("empty section name")
			}
			if seenSections[name] {
				return fail("duplicate section [%s]", name)
			}
			seenSections[name] = true
			section = &Section{Name: name, Values: map[string][]string{}}
			file.Sections = append(file.Sections, section)
			lastKey = ""

		default:
			if section == nil {
				return fail("key outside of any section: %q", line)
			}
			key, value, found := strings.Cut(line, "=")
			if !found {
				return fail("expected 'key = value', got %q", line)
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return fail("empty key name")
			}
			if _, exists := section.Values[key]; exists {
				return fail("duplicate key %q in section [%s]", key, section.Name)
			}
			section.Keys = append(section.Keys, key)
			value = strings.TrimSpace(value)
			if value == "" {
				// list values start empty and accumulate from
				// the indented lines that follow
				section.Values[key] = []string{}
			} else {
				section.Values[key] = []string{value}
			}
			lastKey = key
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return file, nil
}
