// Package config loads the transformer configuration: file discovery rules,
// classifier keywords and the wrapper kinds the engine can apply.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// FileName is the configuration file looked up in the project root.
const FileName = ".guardwrap.yaml"

// ErrUnknownKind is returned when a wrapper kind is not configured.
var ErrUnknownKind = errors.New("unknown wrapper kind")

// Classifier configures the category rules.
type Classifier struct {
	Keywords  []string `yaml:"keywords"`
	AISegment string   `yaml:"ai_segment"`
}

// Config is the full transformer configuration.
type Config struct {
	Subtree        string          `yaml:"subtree"`
	Extensions     []string        `yaml:"extensions"`
	Exclude        []string        `yaml:"exclude"`
	IgnorePatterns []string        `yaml:"ignore_patterns"`
	Indent         string          `yaml:"indent"`
	ScanMode       string          `yaml:"scan_mode"`
	VerifySyntax   bool            `yaml:"verify_syntax"`
	AllFunctions   bool            `yaml:"all_functions"`
	Classifier     Classifier      `yaml:"classifier"`
	Kinds          []m.WrapperKind `yaml:"kinds"`
}

// RateLimitKind wraps exported server actions in withActionRateLimit.
var RateLimitKind = m.WrapperKind{
	Name:        "ratelimit",
	Symbol:      "withActionRateLimit",
	Markers:     []string{"withRateLimit"},
	ImportLine:  "import { withActionRateLimit } from '@/src/lib/middleware/action-rate-limit'",
	Anchor:      m.AnchorFunction,
	Open:        "withActionRateLimit('{{.Category}}', async () => {",
	Close:       "})",
	Categorized: true,
}

// CSRFKind nests withCSRFProtection inside an existing rate-limit closure.
var CSRFKind = m.WrapperKind{
	Name:         "csrf",
	Symbol:       "withCSRFProtection",
	Requires:     []string{"withActionRateLimit"},
	ImportLine:   "import { withCSRFProtection } from '@/src/lib/middleware/csrf-protection'",
	ImportAnchor: "withActionRateLimit",
	Anchor:       m.AnchorCall,
	CallPattern:  `withActionRateLimit\(\s*['"](\w+)['"]\s*,\s*async\s*\(\)\s*=>\s*\{`,
	Open:         "withCSRFProtection(async () => {",
	Close:        "})",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Subtree:    "src/actions",
		Extensions: []string{".ts"},
		Exclude: []string{
			"src/actions/kpis/update-kpi.ts",
			"src/actions/kpis/delete-kpi.ts",
			"src/actions/kpis/create-kpi.ts",
			"src/actions/kpis/create-kpi-alert.ts",
			"src/actions/kpis/add-kpi-measurement.ts",
			"src/actions/goals/create-goal.ts",
		},
		IgnorePatterns: []string{"index.ts"},
		Indent:         "  ",
		ScanMode:       "aware",
		Classifier: Classifier{
			Keywords:  []string{"score", "synthesize", "recommend", "ai"},
			AISegment: "ai",
		},
		Kinds: []m.WrapperKind{RateLimitKind, CSRFKind},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults. Kinds declared in the document
// replace built-in kinds of the same name and are otherwise appended.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	presets := cfg.Kinds
	cfg.Kinds = nil

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Kinds = mergeKinds(presets, cfg.Kinds)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the settings the engine depends on.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Subtree) == "" {
		errs = append(errs, errors.New("subtree must not be empty"))
	}

	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("at least one extension is required"))
	}

	if strings.Trim(c.Indent, " \t") != "" {
		errs = append(errs, fmt.Errorf("indent %q must contain only spaces or tabs", c.Indent))
	}

	switch c.ScanMode {
	case "", "aware", "literal":
	default:
		errs = append(errs, fmt.Errorf("scan_mode %q must be aware or literal", c.ScanMode))
	}

	seen := make(map[string]struct{}, len(c.Kinds))
	for _, kind := range c.Kinds {
		if _, dup := seen[kind.Name]; dup {
			errs = append(errs, fmt.Errorf("kind %q declared twice", kind.Name))
		}

		seen[kind.Name] = struct{}{}

		if err := validateKind(kind); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Kind returns the configured wrapper kind with the given name.
func (c Config) Kind(name string) (m.WrapperKind, error) {
	for _, kind := range c.Kinds {
		if kind.Name == name {
			return kind, nil
		}
	}

	return m.WrapperKind{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// KindNames lists configured kinds in declaration order.
func (c Config) KindNames() []string {
	names := make([]string, 0, len(c.Kinds))
	for _, kind := range c.Kinds {
		names = append(names, kind.Name)
	}

	return names
}

func validateKind(kind m.WrapperKind) error {
	switch {
	case kind.Name == "":
		return errors.New("kind without a name")
	case kind.Symbol == "":
		return fmt.Errorf("kind %q: symbol is required", kind.Name)
	case kind.ImportLine == "":
		return fmt.Errorf("kind %q: import is required", kind.Name)
	case kind.Open == "" || kind.Close == "":
		return fmt.Errorf("kind %q: open and close are required", kind.Name)
	case !strings.HasSuffix(strings.TrimSpace(kind.Open), "{"):
		return fmt.Errorf("kind %q: open must end by opening a closure body", kind.Name)
	}

	switch kind.Anchor {
	case m.AnchorFunction:
	case m.AnchorCall:
		if _, err := regexp.Compile(kind.CallPattern); err != nil {
			return fmt.Errorf("kind %q: call_pattern: %w", kind.Name, err)
		}

		if !strings.HasSuffix(kind.CallPattern, `\{`) {
			return fmt.Errorf("kind %q: call_pattern must end with \\{", kind.Name)
		}
	default:
		return fmt.Errorf("kind %q: anchor %q must be function or call", kind.Name, kind.Anchor)
	}

	return nil
}

func mergeKinds(presets, custom []m.WrapperKind) []m.WrapperKind {
	merged := make([]m.WrapperKind, 0, len(presets)+len(custom))
	merged = append(merged, presets...)

	for _, kind := range custom {
		replaced := false

		for i := range merged {
			if merged[i].Name == kind.Name {
				merged[i] = kind
				replaced = true

				break
			}
		}

		if !replaced {
			merged = append(merged, kind)
		}
	}

	return merged
}
