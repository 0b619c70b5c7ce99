package conformance

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pinvec"
)

// Scenario is a scripted sequence of mutations applied to one container.
// After every step the guarantee of that step is checked against tokens
// captured immediately before it, so compound lifecycles (grow, insert,
// shrink, regrow) are covered the same way as the single-mutation matrix.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// InitialLen is the length the container is grown to before the first
	// step. Growth is checked as G1.
	InitialLen int `yaml:"initial_len"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// FinalLen, when set, is the length the container must have after the
	// last step.
	FinalLen *int `yaml:"final_len,omitempty"`
}

// Step is one operation of a scripted scenario.
type Step struct {
	// Op is one of push, extend, insert, remove, pop, truncate, clear.
	Op pinvec.Op `yaml:"op"`

	// At is the position for insert and remove.
	At *int `yaml:"at,omitempty"`

	// Count is the number of elements for extend.
	Count int `yaml:"count,omitempty"`

	// Len is the new length for truncate.
	Len *int `yaml:"len,omitempty"`

	// Expect is empty for a mutation that must succeed, or "precondition"
	// for a step that must be rejected by the contract preconditions
	// (out-of-range position, pop on empty).
	Expect string `yaml:"expect,omitempty"`
}

// Step expectations.
const (
	ExpectOK           = ""
	ExpectPrecondition = "precondition"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml and *.yml file in dir, sorted by
// scenario name. When filter is non-empty only scenarios whose name matches
// the glob are returned.
func LoadScenarioDir(dir, filter string) ([]*Scenario, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
		}
	}

	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", path, s.Name, prev)
		}
		seen[s.Name] = path

		if filter != "" {
			if ok, _ := filepath.Match(filter, s.Name); !ok {
				continue
			}
		}
		scenarios = append(scenarios, s)
	}

	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Name < scenarios[j].Name })
	return scenarios, nil
}

// validateScenario checks that required fields are present and that every
// step carries the arguments its operation needs. Ranges depend on the
// running length and are checked during execution.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.InitialLen < 0 {
		return fmt.Errorf("initial_len must be non-negative")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.FinalLen != nil && *s.FinalLen < 0 {
		return fmt.Errorf("final_len must be non-negative")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	if st.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}
	if st.Expect != ExpectOK && st.Expect != ExpectPrecondition {
		return fmt.Errorf("steps[%d]: unknown expect %q", index, st.Expect)
	}

	switch st.Op {
	case pinvec.OpPush, pinvec.OpPop, pinvec.OpClear:
		if st.At != nil || st.Len != nil || st.Count != 0 {
			return fmt.Errorf("steps[%d]: %s takes no arguments", index, st.Op)
		}
	case pinvec.OpExtend:
		if st.Count < 1 {
			return fmt.Errorf("steps[%d]: count must be at least 1 for extend", index)
		}
	case pinvec.OpInsert, pinvec.OpRemove:
		if st.At == nil {
			return fmt.Errorf("steps[%d]: at is required for %s", index, st.Op)
		}
	case pinvec.OpTruncate:
		if st.Len == nil {
			return fmt.Errorf("steps[%d]: len is required for truncate", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

// String renders the step the way it appears in diagnostics, e.g.
// "insert(at=3)".
func (st Step) String() string {
	switch st.Op {
	case pinvec.OpExtend:
		return fmt.Sprintf("extend(count=%d)", st.Count)
	case pinvec.OpInsert, pinvec.OpRemove:
		return fmt.Sprintf("%s(at=%d)", st.Op, deref(st.At))
	case pinvec.OpTruncate:
		return fmt.Sprintf("truncate(len=%d)", deref(st.Len))
	default:
		return fmt.Sprintf("%s()", st.Op)
	}
}

// mutation describes the step applied at length n. For a step outside the
// contract preconditions it also returns the sentinel the container must
// report, or nil with rejected set for pop on an empty container.
func (st Step) mutation(n int) (mut pinvec.Mutation, rejected bool, sentinel error) {
	switch st.Op {
	case pinvec.OpPush:
		return pinvec.Push(n), false, nil
	case pinvec.OpExtend:
		return pinvec.Extend(n, st.Count), false, nil
	case pinvec.OpInsert:
		p := deref(st.At)
		if pinvec.CheckInsert(p, n) != nil {
			return pinvec.Mutation{Op: pinvec.OpInsert, N: n, P: p}, true, pinvec.ErrInsertOutOfRange
		}
		return pinvec.Insert(n, p), false, nil
	case pinvec.OpRemove:
		p := deref(st.At)
		if pinvec.CheckIndex(pinvec.OpRemove, p, n) != nil {
			return pinvec.Mutation{Op: pinvec.OpRemove, N: n, P: p}, true, pinvec.ErrIndexOutOfRange
		}
		return pinvec.Remove(n, p), false, nil
	case pinvec.OpPop:
		if n == 0 {
			return pinvec.Mutation{Op: pinvec.OpPop}, true, nil
		}
		return pinvec.Pop(n), false, nil
	case pinvec.OpTruncate:
		newLen := deref(st.Len)
		if pinvec.CheckTruncate(newLen, n) != nil {
			return pinvec.Mutation{Op: pinvec.OpTruncate, N: n, P: newLen}, true, pinvec.ErrTruncateOutOfRange
		}
		return pinvec.Truncate(n, newLen), false, nil
	default:
		return pinvec.Clear(n), false, nil
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
