// Package ioformat implements the external collaborators spec.md marks out
// of scope for the scheduling core itself: parsing the architecture and
// task XML files into the domain model, and formatting a solved schedule
// back out as JSON, XML, SVG or raw text.
package ioformat

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/partsched/partsched/internal/domain"
)

// archXML mirrors the *.cfg architecture file: a root element holding Cpu
// elements, each holding Core elements. MacroTick is accepted on either
// level and ignored, matching spec.md §6.
type archXML struct {
	XMLName xml.Name  `xml:"Architecture"`
	CPUs    []cpuXML  `xml:"Cpu"`
}

type cpuXML struct {
	ID        int      `xml:"Id,attr"`
	MacroTick *int     `xml:"MacroTick,attr"`
	Cores     []coreXML `xml:"Core"`
}

type coreXML struct {
	ID        int  `xml:"Id,attr"`
	MacroTick *int `xml:"MacroTick,attr"`
}

// ParseArchitecture reads a *.cfg file's contents into a domain.Architecture,
// CPUs and cores ordered ascending by their declared Id.
func ParseArchitecture(r io.Reader) (domain.Architecture, error) {
	var doc archXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse architecture: %w", err)
	}

	sort.Slice(doc.CPUs, func(i, j int) bool { return doc.CPUs[i].ID < doc.CPUs[j].ID })

	arch := make(domain.Architecture, len(doc.CPUs))
	for i, c := range doc.CPUs {
		cpu := &domain.CPU{ID: c.ID}
		sort.Slice(c.Cores, func(a, b int) bool { return c.Cores[a].ID < c.Cores[b].ID })
		cpu.Cores = make([]*domain.Core, len(c.Cores))
		for j, core := range c.Cores {
			cpu.Cores[j] = &domain.Core{ID: core.ID, CPU: cpu}
		}
		arch[i] = cpu
	}

	return arch, nil
}

// taskXML mirrors the *.tsk file: a flat table of Node elements defining
// tasks, and Application elements listing which Nodes (by name, via
// Runnable) belong to which app, in which order.
type taskXML struct {
	XMLName      xml.Name      `xml:"Tasks"`
	Nodes        []nodeXML     `xml:"Node"`
	Applications []appXML      `xml:"Application"`
}

type nodeXML struct {
	Name     string   `xml:"Name,attr"`
	ID       int      `xml:"Id,attr"`
	WCET     int      `xml:"WCET,attr"`
	Deadline int      `xml:"Deadline,attr"`
	CIL      int      `xml:"CIL,attr"`
	Period   periodXML `xml:"Period"`
}

type periodXML struct {
	Value int `xml:"Value,attr"`
}

type appXML struct {
	Name     string        `xml:"Name,attr"`
	Inorder  string        `xml:"Inorder,attr"`
	Runnable []runnableXML `xml:"Runnable"`
}

type runnableXML struct {
	Name string `xml:"Name,attr"`
}

// ParseGraph reads a *.tsk file's contents into a domain.Graph and sets its
// Hyperperiod from the resulting tasks' periods via domain.Hyperperiod.
func ParseGraph(r io.Reader) (*domain.Graph, error) {
	var doc taskXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}

	nodesByName := make(map[string]nodeXML, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodesByName[n.Name] = n
	}

	graph := &domain.Graph{}

	for _, a := range doc.Applications {
		app := &domain.App{Name: a.Name, Order: a.Inorder == "true"}

		for _, r := range a.Runnable {
			node, ok := nodesByName[r.Name]
			if !ok {
				return nil, fmt.Errorf("parse graph: app %q references unknown node %q", a.Name, r.Name)
			}

			task := &domain.Task{
				ID:          node.ID,
				App:         app,
				WCET:        node.WCET,
				Period:      node.Period.Value,
				Deadline:    node.Deadline,
				Criticality: node.CIL,
			}
			app.Tasks = append(app.Tasks, task)
		}

		if app.Order {
			app.SortTasksByID()
			for i := 1; i < len(app.Tasks); i++ {
				app.Tasks[i].Parent = app.Tasks[i-1]
			}
		}

		graph.Apps = append(graph.Apps, app)
	}

	var periods []int
	for _, t := range graph.Tasks() {
		periods = append(periods, t.Period)
	}
	graph.Hyperperiod = domain.Hyperperiod(periods)

	return graph, nil
}
