package sln

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// WriteFile writes f to path
func (f *File) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Write serialises f
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	eol := "\n"
	if f.CRLF {
		eol = "\r\n"
	}
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format, args...)
		bw.WriteString(eol)
	}

	if f.BOM {
		bw.Write(utf8BOM)
	}
	if f.LeadingBlankLine {
		bw.WriteString(eol)
	}

	line("%s%s", formatHeader, f.FormatVersion)
	for _, c := range f.Comments {
		line("%s", c)
	}
	if f.VisualStudioVersion != "" {
		line("VisualStudioVersion = %s", f.VisualStudioVersion)
	}
	if f.MinimumVisualStudioVersion != "" {
		line("MinimumVisualStudioVersion = %s", f.MinimumVisualStudioVersion)
	}

	for _, p := range f.Projects {
		line(`Project("%s") = "%s", "%s", "%s"`, p.TypeID, p.Name, p.Path, p.ID)
		for _, b := range p.Body {
			line("%s", b)
		}
		line("EndProject")
	}

	line("Global")
	for _, s := range f.Sections {
		line("\tGlobalSection(%s) = %s", s.Name, s.Phase)
		for _, e := range s.Entries {
			line("\t\t%s = %s", e.Key, e.Value)
		}
		line("\tEndGlobalSection")
	}
	line("EndGlobal")

	return bw.Flush()
}
