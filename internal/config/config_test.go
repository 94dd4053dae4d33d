package config

import (
	"strings"
	"testing"
)

func TestLoadValidatesAgainstSchema(t *testing.T) {
	if _, err := Load(strings.NewReader(`{"algorithm": "bogus"}`)); err == nil {
		t.Fatal("want rejection of an algorithm outside the enum")
	}

	f, err := Load(strings.NewReader(`{"algorithm": "rm", "switch_time": 5}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Algorithm != "rm" {
		t.Fatalf("want algorithm rm, got %q", f.Algorithm)
	}
	if f.SwitchTime == nil || *f.SwitchTime != 5 {
		t.Fatalf("want switch_time 5, got %+v", f.SwitchTime)
	}
}

func TestResolvePrecedence(t *testing.T) {
	st := 7
	file := File{Algorithm: "rm", SwitchTime: &st}
	cli := Overrides{Algorithm: "edf", AlgorithmSet: true}

	resolved := Resolve(cli, file)

	if resolved.Algorithm != "edf" {
		t.Fatalf("want CLI override to win, got %q", resolved.Algorithm)
	}
	if resolved.SwitchTime != 7 {
		t.Fatalf("want file value to win over default, got %d", resolved.SwitchTime)
	}
	if resolved.Objective != Defaults.Objective {
		t.Fatalf("want hardcoded default objective, got %q", resolved.Objective)
	}
}
