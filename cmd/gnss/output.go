package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"gopkg.in/yaml.v3"

	"github.com/jobrunner/gnss/internal/application"
	"github.com/jobrunner/gnss/internal/domain"
)

// Output formats accepted by --output.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// printer renders command results as a text table, JSON or YAML.
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case formatText, formatJSON, formatYAML:
		return &printer{w: w, format: format}, nil
	default:
		return nil, fmt.Errorf("invalid output format %q (text, json, yaml)", format)
	}
}

// print writes v as JSON or YAML, or calls text with a tab-aligned writer.
func (p *printer) print(v interface{}, text func(tw *tabwriter.Writer)) error {
	switch p.format {
	case formatJSON:
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		text(tw)
		return tw.Flush()
	}
}

type constellationView struct {
	Input     string `json:"input,omitempty" yaml:"input,omitempty"`
	Name      string `json:"name" yaml:"name"`
	Short     string `json:"short" yaml:"short"`
	Letter    string `json:"letter,omitempty" yaml:"letter,omitempty"`
	Country   string `json:"country,omitempty" yaml:"country,omitempty"`
	Timescale string `json:"timescale,omitempty" yaml:"timescale,omitempty"`
	SBAS      bool   `json:"sbas" yaml:"sbas"`
}

func newConstellationView(input string, c domain.Constellation) constellationView {
	v := constellationView{
		Input: input,
		Name:  spell(c, domain.SpellingLong),
		Short: spell(c, domain.SpellingShort),
		SBAS:  c.IsSBAS(),
	}
	v.Letter, _ = domain.Render(c, domain.SpellingLetter)
	v.Country, _ = c.Country()
	if ts, ok := c.Timescale(); ok {
		v.Timescale = ts.String()
	}
	return v
}

func printConstellations(tw *tabwriter.Writer, views []constellationView) {
	fmt.Fprintln(tw, "INPUT\tNAME\tSHORT\tLETTER\tCOUNTRY\tTIMESCALE\tSBAS")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			dash(v.Input), v.Name, v.Short, dash(v.Letter), dash(v.Country), dash(v.Timescale), v.SBAS)
	}
}

type svView struct {
	SV                  string `json:"sv" yaml:"sv"`
	Constellation       string `json:"constellation" yaml:"constellation"`
	PRN                 uint8  `json:"prn" yaml:"prn"`
	TrueSatelliteNumber int    `json:"true_satellite_number,omitempty" yaml:"true_satellite_number,omitempty"`
	Timescale           string `json:"timescale,omitempty" yaml:"timescale,omitempty"`
	BeiDouGeo           bool   `json:"beidou_geo,omitempty" yaml:"beidou_geo,omitempty"`
	Vehicle             string `json:"vehicle,omitempty" yaml:"vehicle,omitempty"`
	Launch              string `json:"launch,omitempty" yaml:"launch,omitempty"`
}

func newSVView(sv domain.SV, entry *domain.SBASEntry, launch time.Time) svView {
	v := svView{
		SV:            sv.String(),
		Constellation: spell(sv.Constellation, domain.SpellingShort),
		PRN:           sv.PRN,
		BeiDouGeo:     sv.IsBeiDouGeo(),
	}
	v.TrueSatelliteNumber, _ = sv.TrueSatelliteNumber()
	if ts, ok := sv.Timescale(); ok {
		v.Timescale = ts.String()
	}
	if entry != nil {
		v.Vehicle = entry.Vehicle
		v.Launch = launchDate(launch)
	}
	return v
}

type entryView struct {
	Slot          uint8  `json:"slot" yaml:"slot"`
	PRN           int    `json:"prn" yaml:"prn"`
	SV            string `json:"sv" yaml:"sv"`
	Constellation string `json:"constellation" yaml:"constellation"`
	Vehicle       string `json:"vehicle,omitempty" yaml:"vehicle,omitempty"`
	Launch        string `json:"launch,omitempty" yaml:"launch,omitempty"`
	Vertices      int    `json:"vertices" yaml:"vertices"`
	Coverage      string `json:"coverage,omitempty" yaml:"coverage,omitempty"`

	launch time.Time
}

func newEntryView(e domain.SBASEntry, withCoverage bool) entryView {
	v := entryView{
		Slot:          e.Slot,
		PRN:           e.PRN(),
		SV:            e.SV().String(),
		Constellation: spell(e.Constellation, domain.SpellingShort),
		Vehicle:       e.Vehicle,
		Launch:        launchDate(e.Launch),
		launch:        e.Launch,
	}
	if e.HasCoverage() {
		v.Vertices = vertexCount(e)
		if withCoverage {
			v.Coverage = wkt.MarshalString(e.Coverage)
		}
	}
	return v
}

func printEntries(tw *tabwriter.Writer, views []entryView) {
	fmt.Fprintln(tw, "SLOT\tSV\tCONSTELLATION\tVEHICLE\tLAUNCHED\tVERTICES")
	for _, v := range views {
		launched := "-"
		if !v.launch.IsZero() {
			launched = fmt.Sprintf("%s (%s)", v.Launch, humanize.Time(v.launch))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			v.Slot, v.SV, v.Constellation, dash(v.Vehicle), launched, humanize.Comma(int64(v.Vertices)))
	}
	for _, v := range views {
		if v.Coverage != "" {
			fmt.Fprintf(tw, "\n%s coverage:\t%s\n", v.SV, v.Coverage)
		}
	}
}

type selectionView struct {
	Lon           float64     `json:"lon" yaml:"lon"`
	Lat           float64     `json:"lat" yaml:"lat"`
	Constellation string      `json:"constellation,omitempty" yaml:"constellation,omitempty"`
	Entry         *entryView  `json:"entry,omitempty" yaml:"entry,omitempty"`
	Matches       []entryView `json:"matches" yaml:"matches"`
	Overlapping   bool        `json:"overlapping" yaml:"overlapping"`
}

func newSelectionView(sel *domain.Selection) selectionView {
	v := selectionView{
		Lon:         sel.Coordinate.Lon,
		Lat:         sel.Coordinate.Lat,
		Matches:     make([]entryView, 0, len(sel.Matches)),
		Overlapping: sel.Overlapping(),
	}
	for _, m := range sel.Matches {
		v.Matches = append(v.Matches, newEntryView(m, false))
	}
	if c, ok := sel.Constellation(); ok {
		v.Constellation = spell(c, domain.SpellingShort)
		entry := newEntryView(*sel.Entry, false)
		v.Entry = &entry
	}
	return v
}

type reportView struct {
	Path            string `json:"path" yaml:"path"`
	Valid           bool   `json:"valid" yaml:"valid"`
	Entries         int    `json:"entries" yaml:"entries"`
	CoverageRegions int    `json:"coverage_regions" yaml:"coverage_regions"`
	Error           string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newReportView(r application.ValidationReport) reportView {
	return reportView{
		Path:            r.Path,
		Valid:           r.Valid,
		Entries:         r.Entries,
		CoverageRegions: r.CoverageRegions,
		Error:           r.Error,
	}
}

func printReports(tw *tabwriter.Writer, views []reportView) {
	fmt.Fprintln(tw, "PATH\tSTATUS\tENTRIES\tCOVERAGE\tERROR")
	for _, v := range views {
		status := "ok"
		if !v.Valid {
			status = "invalid"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", v.Path, status, v.Entries, v.CoverageRegions, dash(v.Error))
	}
}

func spell(c domain.Constellation, sp domain.Spelling) string {
	text, _ := domain.Render(c, sp)
	return text
}

func launchDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// vertexCount sums the ring lengths of a coverage region.
func vertexCount(e domain.SBASEntry) int {
	var polys orb.MultiPolygon
	switch g := e.Coverage.(type) {
	case orb.Polygon:
		polys = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		polys = g
	}

	n := 0
	for _, p := range polys {
		for _, r := range p {
			n += len(r)
		}
	}
	return n
}
