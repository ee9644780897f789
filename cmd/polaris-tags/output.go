package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/SINHASantos/polaris/internal/config"
	"github.com/SINHASantos/polaris/internal/library"
	"github.com/SINHASantos/polaris/internal/tags"
)

// printer renders command results as indented JSON or as colored text.
type printer struct {
	w    io.Writer
	json bool

	header *color.Color
	label  *color.Color
	failed *color.Color
	colors map[tags.Verdict]*color.Color
}

func newPrinter(w io.Writer, format string, useColor bool) *printer {
	p := &printer{
		w:      w,
		json:   format == config.FormatJSON,
		header: color.New(color.FgCyan, color.Bold),
		label:  color.New(color.FgBlue),
		failed: color.New(color.FgRed),
		colors: map[tags.Verdict]*color.Color{
			tags.VerdictMatch:    color.New(color.FgGreen),
			tags.VerdictMismatch: color.New(color.FgRed, color.Bold),
			tags.VerdictUnknown:  color.New(color.FgYellow),
		},
	}
	if !useColor {
		for _, c := range p.all() {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) all() []*color.Color {
	cs := []*color.Color{p.header, p.label, p.failed}
	for _, c := range p.colors {
		cs = append(cs, c)
	}
	return cs
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// results prints one block per file. Paths are shown relative to root when
// root is set.
func (p *printer) results(root string, results []library.Result) error {
	if p.json {
		if results == nil {
			results = []library.Result{}
		}
		return p.encode(results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		path := r.Path
		if root != "" {
			path = library.RelativePath(root, r.Path)
		}
		p.header.Fprintln(p.w, path)
		if r.Metadata == nil {
			p.failed.Fprintln(p.w, "  no metadata")
			continue
		}
		p.metadata(r.Metadata)
	}
	return nil
}

func (p *printer) metadata(m *tags.Metadata) {
	field := func(name, value string) {
		if value == "" {
			return
		}
		p.label.Fprintf(p.w, "  %-13s", name)
		fmt.Fprintln(p.w, value)
	}
	list := func(name string, values []string) {
		field(name, strings.Join(values, "; "))
	}

	field("Title", deref(m.Title))
	field("Album", deref(m.Album))
	list("Artists", m.Artists)
	list("Album artists", m.AlbumArtists)
	list("Composers", m.Composers)
	list("Lyricists", m.Lyricists)
	list("Genres", m.Genres)
	list("Labels", m.Labels)
	field("Track", number(m.TrackNumber))
	field("Disc", number(m.DiscNumber))
	if m.Year != nil {
		field("Year", strconv.Itoa(int(*m.Year)))
	}
	if m.Duration != nil {
		field("Duration", formatDuration(time.Duration(*m.Duration)*time.Second))
	}
	field("Artwork", strconv.FormatBool(m.HasArtwork))
}

func (p *printer) scan(root string, results []library.Result, summary library.Summary) error {
	if p.json {
		if results == nil {
			results = []library.Result{}
		}
		return p.encode(struct {
			Results []library.Result `json:"results"`
			Summary library.Summary  `json:"summary"`
		}{results, summary})
	}
	if err := p.results(root, results); err != nil {
		return err
	}
	if len(results) > 0 {
		fmt.Fprintln(p.w)
	}
	p.header.Fprintf(p.w, "%s files", humanize.Comma(int64(summary.Files)))
	fmt.Fprintf(p.w, ", %s with metadata", humanize.Comma(int64(summary.WithMetadata)))
	if summary.Failed > 0 {
		p.failed.Fprintf(p.w, ", %s failed", humanize.Comma(int64(summary.Failed)))
	}
	fmt.Fprintf(p.w, ", %s, %s\n", humanize.IBytes(uint64(summary.Bytes)), formatDuration(summary.Duration)) //nolint:gosec // sizes are non-negative
	return nil
}

func (p *printer) sniffed(sniffed []*tags.Sniffed) error {
	if p.json {
		return p.encode(sniffed)
	}
	for _, s := range sniffed {
		c := p.colors[s.Verdict]
		if c == nil {
			c = p.colors[tags.VerdictUnknown]
		}
		c.Fprintf(p.w, "%-8s", s.Verdict)
		content := "unrecognized"
		if s.FileType != "" {
			content = s.FileType + "/" + s.TagFormat
		}
		fmt.Fprintf(p.w, " %s (extension %s, content %s)\n", s.Path, s.Format, content)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func number(n *uint32) string {
	if n == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*n), 10)
}

// formatDuration formats d as H:MM:SS, or M:SS under an hour.
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
