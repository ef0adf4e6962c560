package config

import (
	"fmt"
	"strings"
)

const tomlBanner = "# Ocean Notes configuration (TOML)\n"

const addedMarker = "# Added by config update"

// sectionDocs heads each table in a generated file.
var sectionDocs = map[string]string{
	"storage":  "Where notes are persisted",
	"autosave": "Editor autosave timing",
	"render":   "Markup renderer limits",
	"log":      "Diagnostics written to stderr",
	"list":     "Defaults for note list",
	"editor":   "External $EDITOR round trips",
}

// optionGroup is one TOML table; keys are relative to section.
type optionGroup struct {
	section string
	opts    []ConfigOption
}

// groupOptions splits opts into the top-level group followed by one group per
// section, in table order.
func groupOptions(opts []ConfigOption) []optionGroup {
	groups := []optionGroup{{}}
	index := map[string]int{"": 0}
	for _, o := range opts {
		section, name := splitKey(o.Key)
		i, ok := index[section]
		if !ok {
			i = len(groups)
			index[section] = i
			groups = append(groups, optionGroup{section: section})
		}
		o.Key = name
		groups[i].opts = append(groups[i].opts, o)
	}
	return groups
}

func splitKey(key string) (section, name string) {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

func joinKey(section, name string) string {
	if section == "" {
		return name
	}
	return section + "." + name
}

var tomlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

// tomlValue formats a default from the option table. Everything that is not a
// bool or an integer is written as a basic string.
func tomlValue(v any) string {
	switch v := v.(type) {
	case bool, int, int64:
		return fmt.Sprint(v)
	case string:
		return `"` + tomlEscaper.Replace(v) + `"`
	default:
		return `"` + tomlEscaper.Replace(fmt.Sprint(v)) + `"`
	}
}

// optionLines is the commented assignment for one option plus a blank line.
func optionLines(name string, value any, comment string) []string {
	var lines []string
	if comment != "" {
		lines = append(lines, "# "+comment)
	}
	return append(lines, name+" = "+tomlValue(value), "")
}

// RenderDefaultTOML renders every option with its default, one table per
// section.
func RenderDefaultTOML() string {
	var lines []string
	for _, g := range groupOptions(GetConfigOptions()) {
		if g.section != "" {
			if doc := sectionDocs[g.section]; doc != "" {
				lines = append(lines, "## "+doc)
			}
			lines = append(lines, "["+g.section+"]")
		}
		for _, o := range g.opts {
			lines = append(lines, optionLines(o.Key, o.Default, o.Comment)...)
		}
	}
	return tomlBanner + strings.Join(lines, "\n") + "\n"
}

// UpdateTOML brings an existing file up to date: keys no longer in the option
// table are commented out, and missing options are added inside their own
// table so no table is declared twice. It reports whether anything changed.
func UpdateTOML(existing string) (string, bool) {
	known := optionIndex()
	seen := make(map[string]bool)
	// index in out of the last assignment (or header) of each table
	last := map[string]int{"": -1}
	firstHeader := -1
	current := ""
	changed := false

	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if isSectionHeader(trim) {
			current = strings.TrimSpace(trim[1 : len(trim)-1])
			if firstHeader < 0 {
				firstHeader = len(out)
			}
			out = append(out, line)
			last[current] = len(out) - 1
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		full := joinKey(current, key)
		if _, ok := known[full]; ok {
			seen[full] = true
			out = append(out, line)
		} else {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out,
				indent+"# OUTDATED: option removed from config schema",
				indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
		}
		last[current] = len(out) - 1
	}

	inserts := make(map[int][]string)
	var tail []string
	for _, g := range groupOptions(GetConfigOptions()) {
		var missing []string
		for _, o := range g.opts {
			if !seen[joinKey(g.section, o.Key)] {
				missing = append(missing, optionLines(o.Key, o.Default, o.Comment)...)
			}
		}
		if len(missing) == 0 {
			continue
		}
		changed = true
		idx, present := last[g.section]
		switch {
		case g.section == "" && idx < 0:
			pos := len(out)
			if firstHeader >= 0 {
				pos = firstHeader
			}
			inserts[pos] = append(inserts[pos], append([]string{addedMarker}, missing...)...)
		case present:
			inserts[idx+1] = append(inserts[idx+1], append([]string{addedMarker}, missing...)...)
		default:
			if len(tail) == 0 {
				tail = append(tail, "", addedMarker)
			}
			tail = append(tail, "["+g.section+"]")
			tail = append(tail, missing...)
		}
	}
	if !changed {
		return existing, false
	}

	merged := make([]string, 0, len(out)+len(tail))
	for i, l := range out {
		merged = append(merged, inserts[i]...)
		merged = append(merged, l)
	}
	merged = append(merged, inserts[len(out)]...)
	merged = append(merged, tail...)
	return strings.Join(merged, "\n"), true
}

// parseTOMLKey returns the bare key of an assignment line. Quoted and dotted
// keys are not used by this config and are treated as opaque.
func parseTOMLKey(line string) (string, bool) {
	trim := strings.TrimSpace(line)
	if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") || strings.HasPrefix(trim, "[") {
		return "", false
	}
	key, _, ok := strings.Cut(trim, "=")
	if !ok {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, `"'`) {
		return "", false
	}
	return key, true
}
