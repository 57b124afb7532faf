// pre_processor.go implements the WGSL include pre-processor. Shader files pull shared
// struct definitions in with a single comment line:
//
//	//@oxy:include frame
//
// The key is looked up in the include registry and the line is replaced with the
// registered WGSL source. Each include is injected at most once per file.
package shader

import (
	"fmt"
	"strings"
)

// includePrefix marks an include directive inside a WGSL line comment.
const includePrefix = "//@oxy:include"

// PreProcessor expands include directives in WGSL source.
type PreProcessor interface {
	// Process replaces every include line in source with its registered WGSL source.
	//
	// Parameters:
	//   - source: the raw WGSL shader source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if an include line is malformed or names an unregistered key
	Process(source string) (string, error)

	// Includes returns the include keys used by the most recent Process call, in source order.
	Includes() []string
}

type preProcessor struct {
	registry map[string]string
	used     []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor over the given include registry.
//
// Parameters:
//   - registry: WGSL sources keyed by include name
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(registry map[string]string) PreProcessor {
	r := make(map[string]string, len(registry))
	for k, v := range registry {
		r[k] = v
	}
	return &preProcessor{registry: r}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.used = p.used[:0]
	seen := make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), includePrefix)
		if !ok {
			out = append(out, line)
			continue
		}

		args := strings.Fields(rest)
		if len(args) != 1 {
			return "", fmt.Errorf("line %d: include takes exactly one argument, got %d", i+1, len(args))
		}
		key := args[0]
		src, ok := p.registry[key]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, key)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		p.used = append(p.used, key)
		out = append(out, src)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []string {
	return append([]string(nil), p.used...)
}
