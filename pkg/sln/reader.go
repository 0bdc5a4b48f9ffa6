package sln

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

const formatHeader = "Microsoft Visual Studio Solution File, Format Version "

var (
	projectRegex = regexp.MustCompile(`^Project\("([^"]*)"\)\s*=\s*"([^"]*)"\s*,\s*"([^"]*)"\s*,\s*"([^"]*)"\s*$`)
	sectionRegex = regexp.MustCompile(`^GlobalSection\(([^)]*)\)\s*=\s*(\S+)\s*$`)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile parses the solution file at path
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Read parses a solution file
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f := &File{}
	if bytes.HasPrefix(data, utf8BOM) {
		f.BOM = true
		data = data[len(utf8BOM):]
	}
	f.CRLF = bytes.Contains(data, []byte("\r\n"))

	p := &parser{file: f}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lineNo++
		if err := p.line(strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	switch p.state {
	case stateProject:
		return nil, fmt.Errorf("unterminated project block %q", p.project.Name)
	case stateGlobal, stateSection:
		return nil, fmt.Errorf("unterminated Global block")
	}
	if f.FormatVersion == "" {
		return nil, fmt.Errorf("missing solution file header")
	}
	return f, nil
}

type parserState int

const (
	stateTop parserState = iota
	stateProject
	stateGlobal
	stateSection
)

type parser struct {
	file    *File
	state   parserState
	lineNo  int
	seen    bool // any non-blank line seen
	project *Project
	section *Section
}

func (p *parser) line(raw string) error {
	trimmed := strings.TrimSpace(raw)

	switch p.state {
	case stateProject:
		if trimmed == "EndProject" {
			p.file.Projects = append(p.file.Projects, p.project)
			p.project = nil
			p.state = stateTop
			return nil
		}
		p.project.Body = append(p.project.Body, raw)
		return nil

	case stateSection:
		if trimmed == "EndGlobalSection" {
			p.file.Sections = append(p.file.Sections, p.section)
			p.section = nil
			p.state = stateGlobal
			return nil
		}
		if trimmed == "" {
			return nil
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			return fmt.Errorf("malformed entry in section %s: %q", p.section.Name, trimmed)
		}
		p.section.Entries = append(p.section.Entries, Entry{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
		return nil

	case stateGlobal:
		switch {
		case trimmed == "EndGlobal":
			p.state = stateTop
		case trimmed == "":
		default:
			m := sectionRegex.FindStringSubmatch(trimmed)
			if m == nil {
				return fmt.Errorf("unexpected line in Global block: %q", trimmed)
			}
			p.section = &Section{Name: m[1], Phase: m[2]}
			p.state = stateSection
		}
		return nil
	}

	// Top level
	if trimmed == "" {
		if !p.seen {
			p.file.LeadingBlankLine = true
		}
		return nil
	}
	p.seen = true

	switch {
	case strings.HasPrefix(trimmed, formatHeader):
		p.file.FormatVersion = strings.TrimSpace(strings.TrimPrefix(trimmed, formatHeader))
	case strings.HasPrefix(trimmed, "#"):
		p.file.Comments = append(p.file.Comments, trimmed)
	case strings.HasPrefix(trimmed, "MinimumVisualStudioVersion"):
		p.file.MinimumVisualStudioVersion = valueOf(trimmed)
	case strings.HasPrefix(trimmed, "VisualStudioVersion"):
		p.file.VisualStudioVersion = valueOf(trimmed)
	case strings.HasPrefix(trimmed, "Project("):
		m := projectRegex.FindStringSubmatch(trimmed)
		if m == nil {
			return fmt.Errorf("malformed project line: %q", trimmed)
		}
		p.project = &Project{TypeID: m[1], Name: m[2], Path: m[3], ID: m[4]}
		p.state = stateProject
	case trimmed == "Global":
		p.state = stateGlobal
	default:
		return fmt.Errorf("unexpected line: %q", trimmed)
	}
	return nil
}

func valueOf(line string) string {
	_, value, _ := strings.Cut(line, "=")
	return strings.TrimSpace(value)
}
