package shaderlib

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/forgecore/engine/internal/elog"
	"github.com/forgecore/engine/job"
)

// Defines is the set of preprocessor defines a shader variant is
// compiled with; two Get calls for the same name with equal Defines
// share one cached Handle.
type Defines map[string]string

// key canonicalizes (name, defines) into a single string so the cache
// map's own hashing does the lookup in spec.md §4.9's "hash (name,
// defines), look up in shaders_map" step — a hand-rolled hash would just
// duplicate what map[string]T already does correctly.
func key(name string, defines Defines) string {
	if len(defines) == 0 {
		return name
	}
	names := make([]string, 0, len(defines))
	for k := range defines {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(name)
	for _, k := range names {
		b.WriteByte('\x00')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(defines[k])
	}
	return b.String()
}

// Reflection holds the shader metadata a real compiler contract would
// extract alongside the byte code (entry points, bind group layout). It
// is left minimal since reflection extraction is part of the
// HLSL-compiler black box, not this package.
type Reflection struct {
	EntryPoint string
}

// ShaderInfo is a shader library entry. SPIRV and Reflection are only
// valid after Group's counter reaches zero; Err is set if compilation
// failed.
type ShaderInfo struct {
	Name    string
	Defines Defines

	Group *job.WaitGroup

	SPIRV      []byte
	Reflection Reflection
	Err        error
}

// Handle is what callers hold: a pointer to the (possibly still
// compiling) ShaderInfo.
type Handle = *ShaderInfo

// Compiler is the shader-compiler contract from spec.md §6:
// compile_shader(name, stage, defines) -> { byte_code, ok }, generalized
// here to return an error instead of a bool.
type Compiler interface {
	Compile(name string, defines Defines) (spirv []byte, refl Reflection, err error)
}

// Library caches compiled shader handles by (name, defines) and drives
// compilation through job.System workers.
type Library struct {
	compiler Compiler
	workers  *job.System
	log      *slog.Logger

	mu      sync.Mutex
	shaders map[string]*ShaderInfo
}

// NewLibrary creates a Library. compiler performs the actual
// name/defines -> SPIR-V translation; workers runs each compile job.
func NewLibrary(compiler Compiler, workers *job.System, logger *slog.Logger) *Library {
	return &Library{
		compiler: compiler,
		workers:  workers,
		log:      elog.Named(logger, "shaderlib"),
		shaders:  make(map[string]*ShaderInfo),
	}
}

// Get returns the Handle for (name, defines), compiling it on a
// job.System worker if this is the first request for this variant. On a
// cache hit, the returned Handle's Group may still be unsignaled;
// callers must Wait on it before using SPIRV/Reflection.
func (l *Library) Get(name string, defines Defines) Handle {
	k := key(name, defines)

	l.mu.Lock()
	if info, ok := l.shaders[k]; ok {
		l.mu.Unlock()
		return info
	}
	info := &ShaderInfo{Name: name, Defines: defines, Group: job.NewWaitGroup(1)}
	l.shaders[k] = info
	l.mu.Unlock()

	l.log.Debug("scheduling shader compile", "name", name, "defines", defines)
	l.workers.Schedule(&job.Job{
		Name:     "shaderlib.compile:" + name,
		Priority: job.PriorityNormal,
		Affinity: job.AffinityAny,
		Group:    info.Group,
		Execute: func(ctx context.Context) {
			spirv, refl, err := l.compiler.Compile(name, defines)
			info.SPIRV = spirv
			info.Reflection = refl
			info.Err = err
			if err != nil {
				l.log.Warn("shader compile failed", "name", name, "error", err)
			}
		},
	})
	return info
}
