// Package unitfile parses the ini-like unit description format (§6 of
// the design this module implements) into the manager package's
// Description values. It is an external collaborator to the unit
// manager core: the core never reads a filesystem or an ini.File
// directly.
package unitfile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/exclave-go/exclave/internal/manager"
)

// ParseResult carries a parsed description plus any non-fatal warnings
// collected while parsing (unknown fields). Only one of the
// description fields is populated, matching the file's kind.
type ParseResult struct {
	Jig       *manager.JigDescription
	Scenario  *manager.ScenarioDescription
	Test      *manager.TestDescription
	Interface *manager.InterfaceDescription
	Warnings  []string
}

// knownFields enumerates the recognized keys per section, used to
// surface a warning for anything else (§6: "unknown fields are ignored
// with a warning").
var knownFields = map[string]map[string]bool{
	"Jig":       {"Name": true, "Description": true, "DefaultScenario": true},
	"Scenario":  {"Name": true, "Description": true, "Tests": true, "ExecStop": true, "Timeout": true},
	"Test":      {"Name": true, "Description": true, "ExecStart": true},
	"Interface": {"Name": true, "Description": true},
}

// ParseFile parses the unit file at path (whose extension names its
// kind, e.g. "generic.jig") from data. The id is the filename without
// its kind suffix.
func ParseFile(path string, data []byte) (*ParseResult, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(id, ext, data)
}

// Parse parses data as the named kind ("jig", "scenario", "test", or
// "interface"), producing the id's Description.
func Parse(id, kind string, data []byte) (*ParseResult, error) {
	// Inline-comment stripping is off: ExecStart/ExecStop values are shell
	// command lines, where ';' and '#' are part of the command.
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s.%s: %w", id, kind, err)
	}

	switch strings.ToLower(kind) {
	case "jig":
		return parseJig(id, f)
	case "scenario":
		return parseScenario(id, f)
	case "test":
		return parseTest(id, f)
	case "interface":
		return parseInterface(id, f)
	default:
		return nil, fmt.Errorf("parse %s.%s: unknown unit kind %q", id, kind, kind)
	}
}

// section looks up a section case-insensitively, since ini.v1 default
// section lookup is case-sensitive but §6 requires case-insensitive
// field and section names.
func section(f *ini.File, name string) (*ini.Section, bool) {
	for _, s := range f.Sections() {
		if strings.EqualFold(s.Name(), name) {
			return s, true
		}
	}
	return nil, false
}

// fields returns every key=value pair in s as a case-insensitive
// lookup table, plus the set of keys actually present (for the
// unknown-field warning pass).
func fields(s *ini.Section) map[string]string {
	out := make(map[string]string, len(s.Keys()))
	for _, k := range s.Keys() {
		out[strings.ToLower(k.Name())] = k.Value()
	}
	return out
}

func warnUnknown(s *ini.Section, sectionName string) []string {
	known := knownFields[sectionName]
	var warnings []string
	for _, k := range s.Keys() {
		recognized := false
		for name := range known {
			if strings.EqualFold(name, k.Name()) {
				recognized = true
				break
			}
		}
		if !recognized {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in [%s]", k.Name(), sectionName))
		}
	}
	return warnings
}

func parseJig(id string, f *ini.File) (*ParseResult, error) {
	s, ok := section(f, "Jig")
	if !ok {
		return nil, fmt.Errorf("%s.jig: missing [Jig] section", id)
	}
	kv := fields(s)
	return &ParseResult{
		Jig: &manager.JigDescription{
			ID:              id,
			DisplayName:     kv["name"],
			Summary:         kv["description"],
			DefaultScenario: kv["defaultscenario"],
		},
		Warnings: warnUnknown(s, "Jig"),
	}, nil
}

func parseScenario(id string, f *ini.File) (*ParseResult, error) {
	s, ok := section(f, "Scenario")
	if !ok {
		return nil, fmt.Errorf("%s.scenario: missing [Scenario] section", id)
	}
	kv := fields(s)

	var tests []string
	if raw := kv["tests"]; raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tests = append(tests, t)
			}
		}
	}

	var timeout time.Duration
	if raw := kv["timeout"]; raw != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s.scenario: invalid Timeout %q: %w", id, raw, err)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return &ParseResult{
		Scenario: &manager.ScenarioDescription{
			ID:          id,
			DisplayName: kv["name"],
			Summary:     kv["description"],
			Tests:       tests,
			ExecStop:    kv["execstop"],
			Timeout:     timeout,
		},
		Warnings: warnUnknown(s, "Scenario"),
	}, nil
}

func parseTest(id string, f *ini.File) (*ParseResult, error) {
	s, ok := section(f, "Test")
	if !ok {
		return nil, fmt.Errorf("%s.test: missing [Test] section", id)
	}
	kv := fields(s)
	return &ParseResult{
		Test: &manager.TestDescription{
			ID:          id,
			DisplayName: kv["name"],
			Summary:     kv["description"],
			ExecStart:   kv["execstart"],
		},
		Warnings: warnUnknown(s, "Test"),
	}, nil
}

func parseInterface(id string, f *ini.File) (*ParseResult, error) {
	s, ok := section(f, "Interface")
	if !ok {
		return nil, fmt.Errorf("%s.interface: missing [Interface] section", id)
	}
	kv := fields(s)
	return &ParseResult{
		Interface: &manager.InterfaceDescription{
			ID:          id,
			DisplayName: kv["name"],
			Summary:     kv["description"],
		},
		Warnings: warnUnknown(s, "Interface"),
	}, nil
}
