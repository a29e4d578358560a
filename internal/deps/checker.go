// Package deps checks that external programs a backend shells out to are
// installed.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// Dependency is an external program required at runtime.
type Dependency struct {
	Name          string   // Stable identifier, e.g. "docker"
	DisplayName   string   // Human readable name
	CheckCommands []string // Executables tried in order
	MinVersion    string   // Optional minimum version, e.g. "14.0.0"
	Description   string   // What the program is used for
}

// Status is the result of checking a Dependency.
type Status struct {
	Available  bool
	Path       string
	Version    string
	CheckError error
}

// Checker locates executables and probes their versions.
type Checker struct {
	lookPath LookPathFunc
	output   OutputFunc
}

// LookPathFunc resolves an executable name to a path.
type LookPathFunc func(name string) (string, error)

// OutputFunc runs a program and returns its combined output.
type OutputFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// NewChecker returns a Checker backed by os/exec.
func NewChecker() *Checker {
	return NewCheckerWith(exec.LookPath, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		//nolint:gosec // name comes from Dependency.CheckCommands (trusted source)
		return exec.CommandContext(ctx, name, args...).CombinedOutput()
	})
}

// NewCheckerWith returns a Checker using the given lookup and probe functions.
func NewCheckerWith(lookPath LookPathFunc, output OutputFunc) *Checker {
	return &Checker{lookPath: lookPath, output: output}
}

// Check verifies if a dependency is available on the system.
// It tries all CheckCommands in order and returns the first one that succeeds.
func (c *Checker) Check(ctx context.Context, dep Dependency) Status {
	var status Status

	for _, cmd := range dep.CheckCommands {
		path, err := c.lookPath(cmd)
		if err != nil {
			continue
		}

		status.Available = true
		status.Path = path

		if dep.MinVersion != "" {
			detected, err := c.probeVersion(ctx, cmd)
			if err != nil {
				status.CheckError = fmt.Errorf("found %s but could not detect version: %w", cmd, err)
			} else {
				status.Version = detected
				if !meetsMinVersion(detected, dep.MinVersion) {
					status.CheckError = fmt.Errorf("found %s version %s but requires %s or later", cmd, detected, dep.MinVersion)
				}
			}
		}

		return status
	}

	if len(dep.CheckCommands) > 0 {
		status.CheckError = fmt.Errorf("%s not found in PATH (tried: %s)", dep.DisplayName, strings.Join(dep.CheckCommands, ", "))
	}

	return status
}

// CheckAll checks every dependency, keyed by name.
func (c *Checker) CheckAll(ctx context.Context, deps []Dependency) map[string]Status {
	if len(deps) == 0 {
		return nil
	}
	results := make(map[string]Status, len(deps))
	for _, dep := range deps {
		results[dep.Name] = c.Check(ctx, dep)
	}
	return results
}

// Missing returns the dependencies whose status is not available, in input order.
func Missing(deps []Dependency, statuses map[string]Status) []Dependency {
	var missing []Dependency
	for _, dep := range deps {
		if status, ok := statuses[dep.Name]; ok && !status.Available {
			missing = append(missing, dep)
		}
	}
	return missing
}

// probeVersion runs cmdName with common version flags until one prints a version.
func (c *Checker) probeVersion(ctx context.Context, cmdName string) (string, error) {
	for _, flag := range []string{"--version", "-v", "version"} {
		output, err := c.output(ctx, cmdName, flag)
		if err != nil {
			continue
		}
		if v := extractVersion(string(output)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("could not determine version")
}

var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`v?(\d+\.\d+\.\d+)`),
	regexp.MustCompile(`(\d+\.\d+)`),
}

// extractVersion pulls the first version-looking token out of output.
// psql prints two-part versions ("psql (PostgreSQL) 16.2").
func extractVersion(output string) string {
	for _, re := range versionPatterns {
		if m := re.FindStringSubmatch(output); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// meetsMinVersion reports whether detected is at least required.
// Unparseable versions never meet the minimum.
func meetsMinVersion(detected, required string) bool {
	d, err := version.NewVersion(detected)
	if err != nil {
		return false
	}
	r, err := version.NewVersion(required)
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(r)
}
