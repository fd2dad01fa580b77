package shell

import (
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
)

// inherited names the variables of the pour process that tools get to see.
var inherited = []string{"HOME", "LANG", "PATH", "TERM", "TMPDIR", "USER"}

// localBin is where npm installs the binaries of a project's dev dependencies.
var localBin = filepath.Join("node_modules", ".bin")

// toolEnv is the environment an external tool runs with.
type toolEnv map[string]string

// newToolEnv keeps the inherited variables of sysEnv, puts the local binaries
// of dir in front of PATH and finally applies overrides.
func newToolEnv(sysEnv []string, dir string, overrides map[string]string) toolEnv {
	env := make(toolEnv, len(inherited)+len(overrides))
	for _, entry := range sysEnv {
		for _, name := range inherited {
			if value, ok := cutVar(entry, name); ok {
				env[name] = value
			}
		}
	}

	if dir != "" {
		bin := filepath.Join(dir, localBin)
		if path := env["PATH"]; path != "" {
			env["PATH"] = bin + string(os.PathListSeparator) + path
		} else {
			env["PATH"] = bin
		}
	}

	maps.Copy(env, overrides)
	return env
}

func cutVar(entry, name string) (string, bool) {
	if len(entry) <= len(name) || entry[len(name)] != '=' || entry[:len(name)] != name {
		return "", false
	}
	return entry[len(name)+1:], true
}

// List renders the environment in os/exec form, sorted by name.
func (e toolEnv) List() []string {
	list := make([]string, 0, len(e))
	for _, name := range slices.Sorted(maps.Keys(e)) {
		list = append(list, name+"="+e[name])
	}
	return list
}

// LookPath finds name in the directories of the environment's PATH, which may
// differ from the PATH of the pour process. Absolute names are returned as is.
func (e toolEnv) LookPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	for _, dir := range filepath.SplitList(e["PATH"]) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}
