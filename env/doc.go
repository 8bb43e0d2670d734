// Package env implements the process-wide service locator from
// spec.md §6: create, register core services, run, shutdown in reverse
// registration order. Grounded on
// original_source/FerrumCore/FeCore/Modules/ServiceLocator.h
// (register/resolve by type) and Framework/ApplicationFramework.h
// (create -> run -> shutdown lifecycle), generalized per SPEC_FULL.md's
// design note: Environment is a thin root locator, not a dependency
// container. Subsystems (job.System, streamio.Reader, copyqueue.Queue,
// shaderlib.Library, ...) are constructed with their dependencies
// passed explicitly by the caller and only registered into Environment
// afterward for other subsystems to look up; Environment never
// constructs anything itself.
package env
