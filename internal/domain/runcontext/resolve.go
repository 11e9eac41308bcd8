// Where: cli/internal/domain/runcontext/resolve.go
// What: Merge configured run options over inferred defaults.
// Why: Config always wins field by field; inference fills the gaps.
package runcontext

import (
	"fmt"
	"reflect"
	"strconv"

	"dario.cat/mergo"
)

// PortFinder picks a host port starting at the container port.
type PortFinder func(start int) (int, error)

// Resolve returns the run options for context name built from dir.
func Resolve(cfg Config, name, dir string, findPort PortFinder) (Options, error) {
	inferred := Infer(dir)

	hostPort := inferred.ContainerPort
	if findPort != nil {
		if port, err := findPort(inferred.ContainerPort); err == nil {
			hostPort = port
		}
	}
	defaults := Options{
		Ports: []string{strconv.Itoa(hostPort) + ":" + strconv.Itoa(inferred.ContainerPort)},
		Env:   inferred.Env(),
	}

	resolved := cloneOptions(cfg.Contexts[name])
	if err := mergo.Merge(&resolved, defaults, mergo.WithTransformers(configuredEnv{})); err != nil {
		return Options{}, fmt.Errorf("merge run options for %s: %w", name, err)
	}
	return resolved, nil
}

// configuredEnv keeps a configured env map as a whole instead of merging keys.
type configuredEnv struct{}

func (configuredEnv) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	if typ != reflect.TypeOf(map[string]string{}) {
		return nil
	}
	return func(dst, src reflect.Value) error {
		return nil
	}
}

func cloneOptions(in Options) Options {
	out := Options{}
	if in.Ports != nil {
		out.Ports = append([]string{}, in.Ports...)
	}
	if in.Volumes != nil {
		out.Volumes = append([]string{}, in.Volumes...)
	}
	if in.Env != nil {
		out.Env = make(map[string]string, len(in.Env))
		for k, v := range in.Env {
			out.Env[k] = v
		}
	}
	return out
}
