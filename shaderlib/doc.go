// Package shaderlib implements the shader library from spec.md §4.9:
// Get hashes a (name, defines) pair, returns an existing handle on a
// cache hit (its completion wait-group may still be unsignaled), and on
// a miss schedules a compile job against the shader-compiler contract
// from spec.md §6 before returning a fresh handle.
//
// The HLSL compiler front-end itself is an explicit Non-goal; naga
// (already a dependency of the teacher's own shader path,
// internal/native/shader_helper.go's CompileShaderToSPIRV) stands in as
// the "black box returning SPIR-V" translator the contract describes.
package shaderlib
