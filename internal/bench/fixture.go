// Package bench runs a fixture of problems under both strategies and
// compares token use and accuracy.
package bench

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region fixture-types

// Fixture is a named set of benchmark problems.
type Fixture struct {
	Description string    `json:"description" yaml:"description"`
	Problems    []Problem `json:"problems" yaml:"problems"`
}

// Problem is one benchmark item. ExpectedAnswer may be empty, in which case
// runs are ungraded.
type Problem struct {
	ID             string `json:"id" yaml:"id"`
	Problem        string `json:"problem" yaml:"problem"`
	Domain         string `json:"domain" yaml:"domain"`
	ExpectedAnswer string `json:"expected_answer" yaml:"expected_answer"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads a JSON fixture, or YAML when the extension is .yaml/.yml.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	if len(f.Problems) == 0 {
		return errors.New("no problems")
	}
	for i, p := range f.Problems {
		if strings.TrimSpace(p.Problem) == "" {
			return fmt.Errorf("problem %d: empty text", i)
		}
		if f.Problems[i].ID == "" {
			f.Problems[i].ID = fmt.Sprintf("p%d", i+1)
		}
	}
	return nil
}

// #endregion fixture-loader
