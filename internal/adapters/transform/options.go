package transform

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"path/filepath"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// decodeOptions decodes the free-form step options into out by re-encoding them
// as YAML. Unknown keys are rejected.
func decodeOptions(spec domain.StepSpec, out any) error {
	with := maps.Clone(spec.With)
	delete(with, domain.FailOnErrorOption)

	data, err := yaml.Marshal(with)
	if err != nil {
		return invalidOptions(spec, err.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return invalidOptions(spec, err.Error())
	}
	return nil
}

func invalidOptions(spec domain.StepSpec, reason string) error {
	return zerr.With(zerr.With(domain.ErrInvalidStepOptions, "step", spec.Use), "reason", reason)
}

// resolvePath resolves p against root unless it is absolute.
func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// replaceExt swaps the extension of path for ext.
func replaceExt(path, ext string) string {
	return path[:len(path)-len(filepath.Ext(path))] + ext
}
