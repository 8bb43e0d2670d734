package shaderlib

import (
	"fmt"

	"github.com/gogpu/naga"
)

// SourceProvider resolves a shader name and its defines into WGSL
// source text. A real implementation reads from the virtual file system
// / asset pipeline and substitutes defines as preprocessor text.
type SourceProvider interface {
	Source(name string, defines Defines) (string, error)
}

// NagaCompiler implements Compiler on top of naga.Compile, the same
// WGSL-to-SPIR-V translator the teacher's own shader path
// (internal/native/shader_helper.go's CompileShaderToSPIRV) uses.
// Reflection carries only a fixed EntryPoint of "main": naga.Compile here
// stands in only for the byte-code half of the compiler contract, not
// reflection extraction.
type NagaCompiler struct {
	Sources SourceProvider
}

// Compile implements Compiler.
func (c NagaCompiler) Compile(name string, defines Defines) ([]byte, Reflection, error) {
	src, err := c.Sources.Source(name, defines)
	if err != nil {
		return nil, Reflection{}, fmt.Errorf("shaderlib: resolving source for %q: %w", name, err)
	}
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, Reflection{}, fmt.Errorf("shaderlib: compiling %q: %w", name, err)
	}
	return spirv, Reflection{EntryPoint: "main"}, nil
}
