// Where: cli/internal/domain/runcontext/infer.go
// What: Infer the container port and env from a build context directory.
// Why: `op run` should work without any config for common app layouts.
package runcontext

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultContainerPort = 8080

// Inferred is what a context directory says about how it listens.
type Inferred struct {
	ContainerPort int
	Source        string
}

// Env returns the PORT env matching the inferred port.
func (i Inferred) Env() map[string]string {
	return map[string]string{"PORT": strconv.Itoa(i.ContainerPort)}
}

var (
	procfilePortDefault = regexp.MustCompile(`\$\{PORT:-\s*(\d+)\}`)
	procfilePortFlag    = regexp.MustCompile(`(?:--port|-p)\s+(\d+)`)
	dockerfileExpose    = regexp.MustCompile(`(?i)EXPOSE\s+(\d+)`)
	nginxListen         = regexp.MustCompile(`listen\s+(\d+)\s*;`)
)

// Infer inspects dir in order: Procfile, project.toml, Dockerfile, nginx.conf.
// The first file present decides; the port defaults to 8080.
func Infer(dir string) Inferred {
	fallback := Inferred{ContainerPort: DefaultContainerPort, Source: "default"}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fallback
	}

	if data, ok := readFile(dir, "Procfile"); ok {
		if port, ok := procfilePort(data); ok {
			return Inferred{ContainerPort: port, Source: "Procfile"}
		}
		return Inferred{ContainerPort: DefaultContainerPort, Source: "Procfile"}
	}

	if data, ok := readFile(dir, "project.toml"); ok {
		port := DefaultContainerPort
		if declared, ok := projectDescriptorPort(data); ok {
			port = declared
		}
		return Inferred{ContainerPort: port, Source: "project.toml"}
	}

	if data, ok := readFile(dir, "Dockerfile"); ok {
		if port, ok := firstPort(dockerfileExpose, data); ok {
			return Inferred{ContainerPort: port, Source: "Dockerfile"}
		}
		return Inferred{ContainerPort: DefaultContainerPort, Source: "Dockerfile"}
	}

	if data, ok := readFile(dir, "nginx.conf"); ok {
		if port, ok := firstPort(nginxListen, data); ok {
			return Inferred{ContainerPort: port, Source: "nginx.conf"}
		}
	}

	return fallback
}

func readFile(dir, name string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, false
	}
	return data, true
}

// procfilePort reads the web process, or the first process when no web entry
// exists, and extracts ${PORT:-N} or --port N / -p N.
func procfilePort(data []byte) (int, bool) {
	var first, web string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, command, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		command = strings.TrimSpace(command)
		if first == "" {
			first = command
		}
		if strings.EqualFold(strings.TrimSpace(name), "web") {
			web = command
			break
		}
	}

	process := web
	if process == "" {
		process = first
	}
	if process == "" {
		return 0, false
	}
	if port, ok := firstPort(procfilePortDefault, []byte(process)); ok {
		return port, true
	}
	return firstPort(procfilePortFlag, []byte(process))
}

type projectDescriptor struct {
	Build struct {
		Env []struct {
			Name  string `toml:"name"`
			Value string `toml:"value"`
		} `toml:"env"`
	} `toml:"build"`
	IO struct {
		Buildpacks struct {
			Build struct {
				Env []struct {
					Name  string `toml:"name"`
					Value string `toml:"value"`
				} `toml:"env"`
			} `toml:"build"`
		} `toml:"buildpacks"`
	} `toml:"io"`
}

// projectDescriptorPort returns a PORT declared as a build env in project.toml
// (legacy [[build.env]] or [[io.buildpacks.build.env]]).
func projectDescriptorPort(data []byte) (int, bool) {
	var descriptor projectDescriptor
	if err := toml.Unmarshal(data, &descriptor); err != nil {
		return 0, false
	}
	envs := append(descriptor.Build.Env, descriptor.IO.Buildpacks.Build.Env...)
	for _, env := range envs {
		if env.Name != "PORT" {
			continue
		}
		if port, err := strconv.Atoi(strings.TrimSpace(env.Value)); err == nil && port > 0 {
			return port, true
		}
	}
	return 0, false
}

func firstPort(pattern *regexp.Regexp, data []byte) (int, bool) {
	match := pattern.FindSubmatch(data)
	if match == nil {
		return 0, false
	}
	port, err := strconv.Atoi(string(match[1]))
	if err != nil || port <= 0 {
		return 0, false
	}
	return port, true
}
