// Package config provides the pour.yaml loader.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"slices"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the task file version this loader understands.
const SupportedVersion = "1"

var validTaskNameRegex = regexp.MustCompile("^[A-Za-z0-9_-]+$")

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader reading from the OS file system.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load finds pour.yaml from cwd upwards and builds the task graph it declares.
func (l *Loader) Load(cwd string) (*domain.Graph, error) {
	configPath, pourfile, err := l.read(cwd)
	if err != nil {
		return nil, err
	}

	if pourfile.Version != "" && pourfile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", configPath, pourfile.Version, SupportedVersion))
	}

	g := domain.NewGraph()
	g.SetRoot(resolveRoot(configPath, pourfile.Root))

	names := make([]string, 0, len(pourfile.Tasks))
	for name := range pourfile.Tasks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dto := pourfile.Tasks[name]
		if dto == nil {
			dto = &TaskDTO{}
		}
		if err := validateTask(name, dto, pourfile.Tasks); err != nil {
			return nil, zerr.With(err, "file", configPath)
		}

		task := buildTask(name, dto, g.Root())
		if len(task.Outputs) > 0 && task.LongRunning() {
			l.Logger.Warn(fmt.Sprintf("task %q is long-running; its targets are never cached", name))
		}

		if err := g.AddTask(task); err != nil {
			return nil, zerr.With(err, "file", configPath)
		}
	}

	return g, nil
}

// DiscoverRoot returns the project root declared by the nearest pour.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, pourfile, err := l.read(cwd)
	if err != nil {
		return "", err
	}
	return resolveRoot(configPath, pourfile.Root), nil
}

func (l *Loader) read(cwd string) (string, *Pourfile, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return "", nil, err
	}

	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		return "", nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", configPath)
	}

	var pourfile Pourfile
	if err := yaml.Unmarshal(data, &pourfile); err != nil {
		return "", nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "file", configPath)
	}
	return configPath, &pourfile, nil
}

func (l *Loader) findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := l.FS.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func validateTask(name string, dto *TaskDTO, tasks map[string]*TaskDTO) error {
	if err := validateTaskName(name); err != nil {
		return err
	}

	for _, dep := range dto.DependsOn {
		if _, ok := tasks[dep]; !ok {
			return zerr.With(zerr.With(domain.ErrMissingDependency, "dependency", dep), "task", name)
		}
	}

	for i, s := range dto.Streams {
		if len(s.Src) == 0 {
			return zerr.With(zerr.With(domain.ErrEmptyStreamSource, "stream", i), "task", name)
		}
	}

	bindings := dto.Watch
	if dto.Serve != nil {
		if err := validateServe(dto.Serve); err != nil {
			return zerr.With(err, "task", name)
		}
		bindings = append(slices.Clone(bindings), dto.Serve.Watch...)
	}

	for _, b := range bindings {
		if err := validateBinding(b, tasks); err != nil {
			return zerr.With(err, "task", name)
		}
	}
	return nil
}

// validateTaskName checks if the task name is reserved or contains invalid characters.
func validateTaskName(name string) error {
	if name == "all" {
		return zerr.With(domain.ErrReservedTaskName, "task", name)
	}
	if !validTaskNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidTaskName, "task", name)
	}
	return nil
}

func validateBinding(b WatchDTO, tasks map[string]*TaskDTO) error {
	if len(b.Paths) == 0 || (len(b.Run) > 0) == b.Reload {
		return zerr.With(domain.ErrInvalidWatchBinding, "paths", b.Paths)
	}
	for _, target := range b.Run {
		dto, ok := tasks[target]
		if !ok {
			return zerr.With(zerr.With(domain.ErrTaskNotFound, "watch_target", target), "paths", b.Paths)
		}
		if dto != nil && (len(dto.Watch) > 0 || dto.Serve != nil) {
			return zerr.With(zerr.With(domain.ErrInvalidWatchBinding, "watch_target", target), "reason", "target is long-running")
		}
	}
	return nil
}

func validateServe(s *ServeDTO) error {
	if s.Proxy == "" {
		return domain.ErrMissingProxyTarget
	}
	u, err := url.Parse(s.Proxy)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return zerr.With(domain.ErrInvalidProxyTarget, "proxy", s.Proxy)
	}
	return nil
}

func buildTask(name string, dto *TaskDTO, root string) *domain.Task {
	task := &domain.Task{
		Name:         domain.NewInternedString(name),
		Description:  dto.Description,
		Dependencies: domain.NewInternedStrings(dto.DependsOn),
		Command:      dto.Cmd,
		Environment:  dto.Environment,
		WorkingDir:   resolveTaskWorkingDir(root, dto.WorkingDir),
		Inputs:       canonicalizeStrings(dto.Input),
		Outputs:      canonicalizeStrings(dto.Target),
		Watch:        buildBindings(dto.Watch),
	}

	for _, s := range dto.Streams {
		stream := domain.Stream{Src: s.Src, Base: s.Base}
		for _, step := range s.Steps {
			stream.Steps = append(stream.Steps, domain.StepSpec{Use: step.Use, With: step.With})
		}
		task.Streams = append(task.Streams, stream)
	}

	if dto.Serve != nil {
		task.Serve = &domain.ServeConfig{
			Proxy:   dto.Serve.Proxy,
			Listen:  dto.Serve.Listen,
			WS:      dto.Serve.WS == nil || *dto.Serve.WS,
			DocRoot: dto.Serve.DocRoot,
			Watch:   buildBindings(dto.Serve.Watch),
		}
		if task.Serve.Listen == "" {
			task.Serve.Listen = domain.DefaultListenAddr
		}
	}

	return task
}

func buildBindings(dtos []WatchDTO) []domain.WatchBinding {
	if len(dtos) == 0 {
		return nil
	}
	bindings := make([]domain.WatchBinding, len(dtos))
	for i, b := range dtos {
		bindings[i] = domain.WatchBinding{
			Paths:  b.Paths,
			Run:    domain.NewInternedStrings(b.Run),
			Reload: b.Reload,
		}
	}
	return bindings
}

func canonicalizeStrings(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}

	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return domain.NewInternedStrings(slices.Compact(sorted))
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// resolveTaskWorkingDir resolves workingDir against root. An empty value means root.
func resolveTaskWorkingDir(root, workingDir string) domain.InternedString {
	if workingDir == "" {
		return domain.NewInternedString(root)
	}
	if filepath.IsAbs(workingDir) {
		return domain.NewInternedString(filepath.Clean(workingDir))
	}
	return domain.NewInternedString(filepath.Clean(filepath.Join(root, workingDir)))
}
