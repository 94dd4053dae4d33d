package ioformat

import (
	"strings"
	"testing"

	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/mapper"
)

func TestBuildRecordOrdersSlicesByStart(t *testing.T) {
	cpu := &domain.CPU{ID: 0}
	core := &domain.Core{ID: 0, CPU: cpu}

	app := &domain.App{Name: "A"}
	task := &domain.Task{ID: 1, App: app}

	jobA := &domain.Job{Task: task}
	jobA.Execution = []*domain.Slice{{Job: jobA, Start: 5, Stop: 7}}
	jobB := &domain.Job{Task: task}
	jobB.Execution = []*domain.Slice{{Job: jobB, Start: 0, Stop: 2}}

	coreJobs := mapper.CoreJobs{core: {jobA, jobB}}

	rec := BuildRecord(coreJobs, 10, 3.5, ConfigEcho{Algorithm: "edf"})

	if len(rec.Cores) != 1 {
		t.Fatalf("want 1 core, got %d", len(rec.Cores))
	}
	slices := rec.Cores[0].Slices
	if len(slices) != 2 || slices[0].Start != 0 || slices[1].Start != 5 {
		t.Fatalf("want slices ordered by start, got %+v", slices)
	}
}

func TestRenderJSONAndRaw(t *testing.T) {
	rec := Record{Hyperperiod: 10, Score: 4, Config: ConfigEcho{Algorithm: "edf"}}

	jsonOut, err := Render(rec, FormatJSON)
	if err != nil {
		t.Fatalf("Render json: %v", err)
	}
	if !strings.Contains(string(jsonOut), `"hyperperiod": 10`) {
		t.Fatalf("want hyperperiod in json output, got %s", jsonOut)
	}

	rawOut, err := Render(rec, FormatRaw)
	if err != nil {
		t.Fatalf("Render raw: %v", err)
	}
	if !strings.Contains(string(rawOut), "hyperperiod=10") {
		t.Fatalf("want hyperperiod in raw output, got %s", rawOut)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(Record{}, Format("bogus")); err == nil {
		t.Fatal("want error for unknown format")
	}
}
