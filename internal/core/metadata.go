package core

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

type fieldClass int

const (
	fieldUnknown fieldClass = iota
	fieldScalar
	fieldSet
	fieldList
)

// FieldTable classifies the keys of one metadata format into scalar,
// set-valued and ordered-list fields.
type FieldTable struct {
	classes map[string]fieldClass
}

// NewFieldTable builds a table from three disjoint key sets. A key
// listed twice is a defect in the table and panics.
func NewFieldTable(scalars []string, sets []string, lists []string) FieldTable {
	table := FieldTable{classes: map[string]fieldClass{}}
	register := func(keys []string, class fieldClass) {
		for _, key := range keys {
			if existing, ok := table.classes[key]; ok && existing != class {
				panic(fmt.Sprintf("field %q classified twice", key))
			}
			table.classes[key] = class
		}
	}
	register(scalars, fieldScalar)
	register(sets, fieldSet)
	register(lists, fieldList)
	return table
}

func (t FieldTable) classOf(key string) fieldClass {
	return t.classes[key]
}

// Knows reports whether key is classified.
func (t FieldTable) Knows(key string) bool {
	return t.classes[key] != fieldUnknown
}

// Attributes is the parsed form of one metadata scope.
type Attributes struct {
	Scalars map[string]string
	Sets    map[string]map[string]struct{}
	Lists   map[string][]string
	Unknown map[string][]string
}

func NewAttributes() Attributes {
	return Attributes{
		Scalars: map[string]string{},
		Sets:    map[string]map[string]struct{}{},
		Lists:   map[string][]string{},
		Unknown: map[string][]string{},
	}
}

// Scalar returns a scalar field or the empty string.
func (a Attributes) Scalar(key string) string {
	return a.Scalars[key]
}

// Set returns the members of a set field in sorted order.
func (a Attributes) Set(key string) []string {
	members := a.Sets[key]
	if len(members) == 0 {
		return nil
	}
	out := make([]string, 0, len(members))
	for member := range members {
		out = append(out, member)
	}
	sort.Strings(out)
	return out
}

// List returns an ordered list field.
func (a Attributes) List(key string) []string {
	return a.Lists[key]
}

// Has reports whether key was seen in this scope.
func (a Attributes) Has(key string) bool {
	if _, ok := a.Scalars[key]; ok {
		return true
	}
	if _, ok := a.Sets[key]; ok {
		return true
	}
	_, ok := a.Lists[key]
	return ok
}

// UnknownKeys returns the unclassified keys in sorted order.
func (a Attributes) UnknownKeys() []string {
	out := make([]string, 0, len(a.Unknown))
	for key := range a.Unknown {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (a Attributes) add(table FieldTable, key string, value string) {
	switch table.classOf(key) {
	case fieldScalar:
		a.Scalars[key] = value
	case fieldSet:
		if a.Sets[key] == nil {
			a.Sets[key] = map[string]struct{}{}
		}
		// an empty value declares the key without members
		if value != "" {
			a.Sets[key][value] = struct{}{}
		}
	case fieldList:
		if value == "" {
			if a.Lists[key] == nil {
				a.Lists[key] = []string{}
			}
			return
		}
		a.Lists[key] = append(a.Lists[key], value)
	default:
		a.Unknown[key] = append(a.Unknown[key], value)
	}
}

// joinWith returns a copy of a with the members of extra appended to
// its sets and lists. Scalars in extra win.
func (a Attributes) joinWith(extra Attributes) Attributes {
	out := a.mergeOver(NewAttributes())
	for key, value := range extra.Scalars {
		out.Scalars[key] = value
	}
	for key, members := range extra.Sets {
		joined := make(map[string]struct{}, len(out.Sets[key])+len(members))
		for member := range out.Sets[key] {
			joined[member] = struct{}{}
		}
		for member := range members {
			joined[member] = struct{}{}
		}
		out.Sets[key] = joined
	}
	for key, values := range extra.Lists {
		joined := make([]string, 0, len(out.Lists[key])+len(values))
		joined = append(joined, out.Lists[key]...)
		out.Lists[key] = append(joined, values...)
	}
	return out
}

// merge returns a copy of base overridden by every key present in a.
func (a Attributes) mergeOver(base Attributes) Attributes {
	out := NewAttributes()
	for key, value := range base.Scalars {
		out.Scalars[key] = value
	}
	for key, members := range base.Sets {
		out.Sets[key] = members
	}
	for key, values := range base.Lists {
		out.Lists[key] = values
	}
	for key, value := range a.Scalars {
		out.Scalars[key] = value
	}
	for key, members := range a.Sets {
		out.Sets[key] = members
	}
	for key, values := range a.Lists {
		out.Lists[key] = values
	}
	for key, values := range a.Unknown {
		out.Unknown[key] = values
	}
	return out
}

// ParseKeyValue reads a flat "key = value" or "key : value" stream.
// Blank lines and lines starting with '#' are skipped. A line without
// a separator makes the whole blob malformed.
func ParseKeyValue(data []byte, table FieldTable) (Attributes, error) {
	attrs := NewAttributes()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitKeyValue(line)
		if !ok {
			return Attributes{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("malformed metadata line %d: %q", lineNo, line))
		}
		attrs.add(table, key, value)
	}
	if err := scanner.Err(); err != nil {
		return Attributes{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read metadata").
			WithCause(err)
	}
	return attrs, nil
}

// splitKeyValue splits on the earliest '=' or ':'.
func splitKeyValue(line string) (string, string, bool) {
	idx := strings.IndexAny(line, "=:")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// ParseDesc reads a repository database record made of %KEY% markers
// each followed by value lines. Scalar values spanning several lines
// are joined with a single space.
func ParseDesc(data []byte, table FieldTable) (Attributes, error) {
	attrs := NewAttributes()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	current := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if key, ok := descMarker(line); ok {
			current = key
			continue
		}
		if current == "" {
			return Attributes{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("desc value before any field marker at line %d", lineNo))
		}
		if table.classOf(current) == fieldScalar {
			if existing, ok := attrs.Scalars[current]; ok {
				attrs.Scalars[current] = existing + " " + line
				continue
			}
		}
		attrs.add(table, current, line)
	}
	if err := scanner.Err(); err != nil {
		return Attributes{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read desc record").
			WithCause(err)
	}
	return attrs, nil
}

func descMarker(line string) (string, bool) {
	if len(line) < 3 || line[0] != '%' || line[len(line)-1] != '%' {
		return "", false
	}
	key := line[1 : len(line)-1]
	if key == "" || strings.ContainsAny(key, "% \t") {
		return "", false
	}
	return key, true
}

// FormatKeyValue renders the classified fields of attrs as a flat
// "key = value" stream: scalars first, then sets, then lists, keys in
// sorted order.
func FormatKeyValue(attrs Attributes) []byte {
	var buf bytes.Buffer
	for _, key := range sortedKeys(attrs.Scalars) {
		fmt.Fprintf(&buf, "%s = %s\n", key, attrs.Scalars[key])
	}
	for _, key := range sortedKeys(attrs.Sets) {
		for _, member := range attrs.Set(key) {
			fmt.Fprintf(&buf, "%s = %s\n", key, member)
		}
	}
	for _, key := range sortedKeys(attrs.Lists) {
		for _, value := range attrs.Lists[key] {
			fmt.Fprintf(&buf, "%s = %s\n", key, value)
		}
	}
	return buf.Bytes()
}

// FormatDesc renders the classified fields of attrs as %KEY% blocks.
func FormatDesc(attrs Attributes) []byte {
	var buf bytes.Buffer
	for _, key := range sortedKeys(attrs.Scalars) {
		fmt.Fprintf(&buf, "%%%s%%\n%s\n\n", key, attrs.Scalars[key])
	}
	for _, key := range sortedKeys(attrs.Sets) {
		fmt.Fprintf(&buf, "%%%s%%\n%s\n\n", key, strings.Join(attrs.Set(key), "\n"))
	}
	for _, key := range sortedKeys(attrs.Lists) {
		fmt.Fprintf(&buf, "%%%s%%\n%s\n\n", key, strings.Join(attrs.Lists[key], "\n"))
	}
	return buf.Bytes()
}

func sortedKeys[V any](values map[string]V) []string {
	out := make([]string, 0, len(values))
	for key := range values {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// logUnknown records unclassified keys as warnings.
func logUnknown(ctx context.Context, source string, attrs Attributes) {
	for _, key := range attrs.UnknownKeys() {
		log.Ctx(ctx).Warn().Str("source", source).Str("key", key).Msg("unhandled metadata key")
	}
}
