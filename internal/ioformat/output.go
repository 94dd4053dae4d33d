package ioformat

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/partsched/partsched/internal/mapper"
)

// SliceRecord is one placed execution slice in the persisted schedule
// document, per spec.md §6.
type SliceRecord struct {
	Start    int    `json:"start" xml:"Start,attr"`
	Stop     int    `json:"stop" xml:"Stop,attr"`
	Duration int    `json:"duration" xml:"Duration,attr"`
	App      string `json:"app_name" xml:"App,attr"`
	TaskID   int    `json:"task_id" xml:"TaskId,attr"`
}

// CoreRecord groups the slices placed on one core, ordered by start.
type CoreRecord struct {
	CPU    int           `json:"cpu" xml:"cpu,attr"`
	Core   int           `json:"core" xml:"core,attr"`
	Slices []SliceRecord `json:"slices" xml:"Slice"`
}

// ConfigEcho repeats back the resolved parameters a schedule was produced
// with, so the output document is self-describing.
type ConfigEcho struct {
	Algorithm   string `json:"algorithm"`
	Objective   string `json:"objective"`
	SwitchTime  int    `json:"switch_time"`
	InitialStep int    `json:"initial_step"`
}

// Record is the full persisted schedule document.
type Record struct {
	XMLName     xml.Name     `json:"-" xml:"Schedule"`
	Config      ConfigEcho   `json:"config" xml:"Config"`
	Hyperperiod int          `json:"hyperperiod" xml:"hyperperiod,attr"`
	Score       float64      `json:"score" xml:"score,attr"`
	Cores       []CoreRecord `json:"cores" xml:"Core"`
}

// BuildRecord assembles a Record from a solved, feasible core->jobs map.
func BuildRecord(coreJobs mapper.CoreJobs, hyperperiod int, score float64, cfg ConfigEcho) Record {
	cores := make([]CoreRecord, 0, len(coreJobs))

	for core, jobs := range coreJobs {
		var slices []SliceRecord
		for _, job := range jobs {
			for _, s := range job.Execution {
				slices = append(slices, SliceRecord{
					Start:    s.Start,
					Stop:     s.Stop,
					Duration: s.Len(),
					App:      job.Task.App.Name,
					TaskID:   job.Task.ID,
				})
			}
		}
		sort.Slice(slices, func(i, j int) bool { return slices[i].Start < slices[j].Start })

		cores = append(cores, CoreRecord{CPU: core.CPU.ID, Core: core.ID, Slices: slices})
	}

	sort.Slice(cores, func(i, j int) bool {
		if cores[i].CPU != cores[j].CPU {
			return cores[i].CPU < cores[j].CPU
		}
		return cores[i].Core < cores[j].Core
	})

	return Record{Config: cfg, Hyperperiod: hyperperiod, Score: score, Cores: cores}
}

// Format is the key the CLI's -f flag selects among.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatSVG  Format = "svg"
	FormatRaw  Format = "raw"
)

// Render produces rec in the given format.
func Render(rec Record, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(rec, "", "  ")
	case FormatXML:
		return xml.MarshalIndent(rec, "", "  ")
	case FormatSVG:
		return renderSVG(rec), nil
	case FormatRaw:
		return renderRaw(rec), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func renderRaw(rec Record) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "algorithm=%s objective=%s switch_time=%d initial_step=%d\n",
		rec.Config.Algorithm, rec.Config.Objective, rec.Config.SwitchTime, rec.Config.InitialStep)
	fmt.Fprintf(&buf, "hyperperiod=%d score=%g\n", rec.Hyperperiod, rec.Score)
	for _, core := range rec.Cores {
		fmt.Fprintf(&buf, "cpu %d core %d:\n", core.CPU, core.Core)
		for _, s := range core.Slices {
			fmt.Fprintf(&buf, "\t[%d,%d) dur=%d app=%s task=%d\n", s.Start, s.Stop, s.Duration, s.App, s.TaskID)
		}
	}
	return buf.Bytes()
}

// renderSVG draws one horizontal row per core, one rectangle per slice
// scaled to the hyperperiod, wide enough to read at a glance; there is no
// SVG library in the pack's dependency stack, so this uses plain string
// building against the stdlib, justified in DESIGN.md.
func renderSVG(rec Record) []byte {
	const rowHeight = 40
	const pxPerUnit = 4
	width := rec.Hyperperiod * pxPerUnit
	height := len(rec.Cores) * rowHeight

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+"\n", width, height)

	palette := []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948"}

	for row, core := range rec.Cores {
		y := row * rowHeight
		fmt.Fprintf(&buf, `<text x="2" y="%d" font-size="10">cpu%d/core%d</text>`+"\n", y+12, core.CPU, core.Core)
		for _, s := range core.Slices {
			color := palette[s.TaskID%len(palette)]
			x := s.Start * pxPerUnit
			w := s.Duration * pxPerUnit
			fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"><title>%s/%d</title></rect>`+"\n",
				x, y+14, w, rowHeight-18, color, s.App, s.TaskID)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
