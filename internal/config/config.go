// Package config loads the scheduler's JSON configuration file and merges
// it with CLI flag overrides, following the teacher's config-file-with-
// CLI-override pattern (cmd/main.go's cmd.Flags().Changed checks) and the
// original implementation's "CLI beats file beats hardcoded default" rule.
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xeipuuv/gojsonschema"
)

// File is the JSON document the --config flag points to (config.json by
// default). Every field is optional; Resolve falls back to hardcoded
// defaults for whatever neither the CLI nor the file supplies.
type File struct {
	Algorithm   string `json:"algorithm,omitempty"`
	Objective   string `json:"objective,omitempty"`
	SwitchTime  *int   `json:"switch_time,omitempty"`
	InitialStep *int   `json:"initial_step,omitempty"`
	TrialLimit  *int   `json:"trial_limit,omitempty"`
}

// schema is embedded rather than read from disk: the config file format is
// small and fixed, so there's no deployment reason to ship it separately.
const schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "algorithm": {"type": "string", "enum": ["edf", "rm"]},
    "objective": {"type": "string", "enum": ["cumulated_free", "nrml_dist_free", "min_e2e_app_del"]},
    "switch_time": {"type": "integer", "minimum": 0},
    "initial_step": {"type": "integer", "minimum": 1},
    "trial_limit": {"type": "integer", "minimum": 1}
  },
  "additionalProperties": false
}`

// Load reads and validates a config file's JSON against the embedded
// schema, returning the decoded File.
func Load(r io.Reader) (File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return File{}, fmt.Errorf("validate config: %w", err)
	}
	if !result.Valid() {
		return File{}, fmt.Errorf("invalid config: %v", result.Errors())
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("decode config: %w", err)
	}

	return f, nil
}

// Resolved is the final set of scheduling parameters after merging CLI
// flags, the config file, and hardcoded defaults.
type Resolved struct {
	Algorithm   string
	Objective   string
	SwitchTime  int
	InitialStep int
	TrialLimit  int
}

// Overrides holds the CLI-supplied values, with Set flags recording which
// ones the user actually passed (cobra's Flags().Changed equivalent).
type Overrides struct {
	Algorithm      string
	AlgorithmSet   bool
	Objective      string
	ObjectiveSet   bool
	SwitchTime     int
	SwitchTimeSet  bool
	InitialStep    int
	InitialStepSet bool
	TrialLimit     int
	TrialLimitSet  bool
}

// Defaults mirror the original implementation's hardcoded fallbacks.
var Defaults = Resolved{
	Algorithm:   "edf",
	Objective:   "cumulated_free",
	SwitchTime:  10,
	InitialStep: 10,
	TrialLimit:  10,
}

// Resolve merges cli over file over Defaults, CLI always winning when set.
func Resolve(cli Overrides, file File) Resolved {
	r := Defaults

	if file.Algorithm != "" {
		r.Algorithm = file.Algorithm
	}
	if file.Objective != "" {
		r.Objective = file.Objective
	}
	if file.SwitchTime != nil {
		r.SwitchTime = *file.SwitchTime
	}
	if file.InitialStep != nil {
		r.InitialStep = *file.InitialStep
	}
	if file.TrialLimit != nil {
		r.TrialLimit = *file.TrialLimit
	}

	if cli.AlgorithmSet {
		r.Algorithm = cli.Algorithm
	}
	if cli.ObjectiveSet {
		r.Objective = cli.Objective
	}
	if cli.SwitchTimeSet {
		r.SwitchTime = cli.SwitchTime
	}
	if cli.InitialStepSet {
		r.InitialStep = cli.InitialStep
	}
	if cli.TrialLimitSet {
		r.TrialLimit = cli.TrialLimit
	}

	return r
}
