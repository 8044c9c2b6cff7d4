package agentmock

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script describes one scripted agent exchange. A prompt matches a script when
// it contains the Match substring (case-insensitive). The reply is streamed as
// chunk events, optionally followed by a proposed code edit.
type Script struct {
	Name    string    `yaml:"name"`
	Match   string    `yaml:"match"`
	Chunks  []string  `yaml:"chunks"`
	Code    *CodeEdit `yaml:"code,omitempty"`
	Fail    string    `yaml:"fail,omitempty"` // when set, stream an error event with this message instead
	DelayMs int       `yaml:"delay_ms,omitempty"`
}

// CodeEdit is a code change the mocked agent proposes for the editor to apply.
type CodeEdit struct {
	Path    string `yaml:"path" json:"path"`
	Content string `yaml:"content" json:"content"`
}

// validate checks a script is usable.
func (s *Script) validate() error {
	if s.Name == "" {
		return fmt.Errorf("script without name")
	}
	if s.Match == "" {
		return fmt.Errorf("script %q: match is required", s.Name)
	}
	if len(s.Chunks) == 0 && s.Fail == "" {
		return fmt.Errorf("script %q: needs chunks or fail", s.Name)
	}
	return nil
}

// LoadScripts reads all *.yml and *.yaml files in dir, each holding a list of
// scripts. Files are processed in name order so matching priority is stable.
func LoadScripts(dir string) ([]Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scripts dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yml" || ext == ".yaml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var scripts []Script
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // dir comes from config
		if err != nil {
			return nil, fmt.Errorf("read script %s: %w", name, err)
		}

		var fileScripts []Script
		if err := yaml.Unmarshal(data, &fileScripts); err != nil {
			return nil, fmt.Errorf("parse script %s: %w", name, err)
		}
		for i := range fileScripts {
			if err := fileScripts[i].validate(); err != nil {
				return nil, fmt.Errorf("script file %s: %w", name, err)
			}
		}
		scripts = append(scripts, fileScripts...)
	}

	if len(scripts) == 0 {
		return nil, fmt.Errorf("no scripts found in %s", dir)
	}
	return scripts, nil
}

// match returns the first script whose Match substring occurs in prompt.
func match(scripts []Script, prompt string) (Script, bool) {
	lower := strings.ToLower(prompt)
	for _, s := range scripts {
		if strings.Contains(lower, strings.ToLower(s.Match)) {
			return s, true
		}
	}
	return Script{}, false
}
