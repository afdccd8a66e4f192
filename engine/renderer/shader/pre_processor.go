// pre_processor.go implements the WGSL include pass. A line of the form
//
//	//@oxy:include <struct>
//
// is replaced with the WGSL struct definition registered under <struct>, so shaders share
// one definition of every uniform and vertex layout with the Go types that fill them.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
)

// includePrefix marks an include annotation. Leading whitespace is allowed.
const includePrefix = "//@oxy:include"

// IncludeKey names a registered WGSL struct source.
type IncludeKey string

const (
	// IncludeCamera injects CameraUniform (engine/camera/assets/camera_uniform.wgsl).
	IncludeCamera IncludeKey = "camera"
	// IncludeModel injects ModelUniform (engine/mesh/assets/model_uniform.wgsl).
	IncludeModel IncludeKey = "model"
	// IncludeVertex injects VertexInput (engine/mesh/assets/vertex.wgsl).
	IncludeVertex IncludeKey = "vertex"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	registry map[IncludeKey]string
	included []IncludeKey
}

// PreProcessor expands include annotations in WGSL source.
type PreProcessor interface {
	// Process replaces every include annotation with its registered struct source.
	// A key included twice is only expanded the first time.
	//
	// Parameters:
	//   - source: WGSL source containing include annotations
	//
	// Returns:
	//   - string: the expanded source
	//   - error: if an annotation is malformed or names an unknown struct
	Process(source string) (string, error)

	// Included returns the keys expanded by the most recent Process call, in source order.
	//
	// Returns:
	//   - []IncludeKey: the expanded keys
	Included() []IncludeKey
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's struct sources registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[IncludeKey]string{
			IncludeCamera: camera.GPUCameraUniformSource,
			IncludeModel:  mesh.GPUModelUniformSource,
			IncludeVertex: mesh.GPUVertexSource,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.included = p.included[:0]
	seen := make(map[IncludeKey]bool)

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
			return "", fmt.Errorf("line %d: @oxy:include takes exactly one argument, got %d", i+1, len(args))
		}
		key := IncludeKey(args[0])
		src, ok := p.registry[key]
		if !ok {
			return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, key)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		p.included = append(p.included, key)
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Included() []IncludeKey {
	return p.included
}
