package fs

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher provides hashing functionality for tasks and files.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeInputHash computes a single hash representing the task configuration,
// environment, and the already resolved input files.
func (h *Hasher) ComputeInputHash(task *domain.Task, env map[string]string, inputs []string) (string, error) {
	hasher := xxhash.New()

	if err := h.hashTaskDefinition(task, hasher); err != nil {
		return "", err
	}
	h.hashEnvironment(env, hasher)

	for _, input := range inputs {
		if err := h.hashFile(input, hasher); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func writeField(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0})
}

func endSection(hasher *xxhash.Digest) {
	_, _ = hasher.Write([]byte{0})
}

// hashTaskDefinition hashes everything in the task that influences what it produces.
func (h *Hasher) hashTaskDefinition(task *domain.Task, hasher *xxhash.Digest) error {
	writeField(hasher, task.Name.String())

	for _, arg := range task.Command {
		writeField(hasher, arg)
	}
	endSection(hasher)

	writeField(hasher, task.WorkingDir.String())

	for _, stream := range task.Streams {
		for _, src := range stream.Src {
			writeField(hasher, src)
		}
		writeField(hasher, stream.Base)
		for _, step := range stream.Steps {
			writeField(hasher, step.Use)
			// encoding/json sorts map keys, which keeps the encoding stable.
			opts, err := json.Marshal(step.With)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrInputHashComputationFailed.Error()), "step", step.Use)
			}
			_, _ = hasher.Write(opts)
			endSection(hasher)
		}
		endSection(hasher)
	}
	endSection(hasher)

	for _, input := range task.Inputs {
		writeField(hasher, input.String())
	}
	endSection(hasher)

	for _, output := range task.Outputs {
		writeField(hasher, output.String())
	}
	endSection(hasher)

	for _, dep := range task.Dependencies {
		writeField(hasher, dep.String())
	}
	endSection(hasher)

	return nil
}

// hashEnvironment hashes environment variables in a deterministic order.
func (h *Hasher) hashEnvironment(env map[string]string, hasher *xxhash.Digest) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		writeField(hasher, env[k])
	}
	endSection(hasher)
}

func (h *Hasher) hashPath(path string, mainHasher io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return zerr.With(zerr.Wrap(iofs.ErrNotExist, "output file missing"), "path", path)
		}
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}

	if !info.IsDir() {
		return h.hashFile(path, mainHasher)
	}

	found := false
	for filePath := range h.walker.WalkFiles(path, nil) {
		found = true
		if err := h.hashFile(filePath, mainHasher); err != nil {
			return err
		}
	}
	if !found {
		return zerr.With(zerr.Wrap(iofs.ErrNotExist, "output directory empty"), "path", path)
	}
	return nil
}

func (h *Hasher) hashFile(path string, mainHasher io.Writer) error {
	_, _ = mainHasher.Write([]byte(path))
	_, _ = mainHasher.Write([]byte{0})

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(mainHasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, domain.ErrWriteHashFailed.Error())
	}
	return nil
}

// ComputeOutputHash computes the hash of the output files. Outputs may name files or
// directories; directories contribute every file below them.
// A missing or empty output is reported as an error.
func (h *Hasher) ComputeOutputHash(outputs []string, root string) (string, error) {
	sortedOutputs := slices.Clone(outputs)
	slices.Sort(sortedOutputs)

	hasher := xxhash.New()

	for _, output := range sortedOutputs {
		if err := h.hashPath(filepath.Join(root, output), hasher); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
