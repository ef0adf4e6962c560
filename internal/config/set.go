package config

import (
	"fmt"
	"strings"
)

// SetOption writes key = value into a TOML document, replacing the key if it
// is already present in its section and appending the section otherwise.
// Only keys listed in GetConfigOptions are accepted.
func SetOption(existing, key string, value any) (string, error) {
	if _, ok := optionIndex()[key]; !ok {
		return existing, fmt.Errorf("unknown config key %q", key)
	}
	section, name := splitKey(key)
	assignment := name + " = " + tomlValue(value)

	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines)+4)
	current := ""
	sectionFound := section == ""
	done := false
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		trim := strings.TrimSpace(l)
		if isSectionHeader(trim) {
			// leaving the target section without having seen the key
			if !done && current == section && sectionFound {
				out = append(out, assignment)
				done = true
			}
			current = strings.TrimSpace(trim[1 : len(trim)-1])
			if current == section {
				sectionFound = true
			}
			out = append(out, l)
			continue
		}
		if !done && current == section {
			if k, ok := parseTOMLKey(l); ok && k == name {
				out = append(out, assignment)
				done = true
				continue
			}
		}
		out = append(out, l)
	}
	if !done {
		if sectionFound {
			out = insertAtSectionEnd(out, section, assignment)
		} else {
			if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
				out = append(out, "")
			}
			out = append(out, "["+section+"]", assignment)
		}
	}
	return strings.Join(out, "\n"), nil
}

// insertAtSectionEnd handles the case where the target section is the last
// one in the document (or the implicit top-level table).
func insertAtSectionEnd(lines []string, section, assignment string) []string {
	if section != "" {
		return append(trimTrailingBlank(lines), assignment)
	}
	for i, l := range lines {
		if isSectionHeader(strings.TrimSpace(l)) {
			out := append([]string{}, lines[:i]...)
			out = append(out, assignment, "")
			return append(out, lines[i:]...)
		}
	}
	return append(trimTrailingBlank(lines), assignment)
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func optionIndex() map[string]ConfigOption {
	opts := GetConfigOptions()
	known := make(map[string]ConfigOption, len(opts))
	for _, o := range opts {
		known[o.Key] = o
	}
	return known
}

func isSectionHeader(trim string) bool {
	if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
		return false
	}
	return strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]")
}

// ParseOptionValue converts raw to the type of key's default value.
func ParseOptionValue(key, raw string) (any, error) {
	o, ok := optionIndex()[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	raw = strings.TrimSpace(raw)
	switch o.Default.(type) {
	case bool:
		switch strings.ToLower(raw) {
		case "true", "yes", "1", "on":
			return true, nil
		case "false", "no", "0", "off":
			return false, nil
		}
		return nil, fmt.Errorf("%s: %q is not a boolean", key, raw)
	case int:
		var n int
		if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || fmt.Sprint(n) != raw {
			return nil, fmt.Errorf("%s: %q is not an integer", key, raw)
		}
		return n, nil
	default:
		return raw, nil
	}
}
