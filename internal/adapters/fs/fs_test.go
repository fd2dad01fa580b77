package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pour/internal/adapters/fs"
	"go.trai.ch/pour/internal/core/domain"
)

// writeTree creates the given files (slash separated, relative to root).
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	}
}

func relativeAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func themeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/style.scss":                   "body{}",
		"src/style-local.scss":             "body{}",
		"src/ie.scss":                      "html{}",
		"src/partials/_grid.scss":          "$g: 1;",
		"public/library/js/scripts.js":     "var a = 1;",
		"public/library/js/vendor.js":      "var b = 2;",
		"public/library/js/min/all.js":     "var a = 1;",
		"public/header.php":                "<?php ?>",
		"public/templates/single.php":      "<?php ?>",
		"node_modules/pkg/index.js":        "module.exports = 1;",
		".git/config":                      "[core]",
		".pour/store/deadbeef.json":        "{}",
		"public/library/images/logo.png":   "png",
		"public/library/images/banner.jpg": "jpg",
	})
	return root
}

func TestWalker_WalkFiles(t *testing.T) {
	root := themeTree(t)
	walker := fs.NewWalker()

	files := make(map[string]bool)
	for path := range walker.WalkFiles(root, []string{"images"}) {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		files[filepath.ToSlash(rel)] = true
	}

	assert.True(t, files["src/style.scss"])
	assert.True(t, files["public/header.php"])
	assert.False(t, files[".git/config"], ".git must be skipped")
	assert.False(t, files[".pour/store/deadbeef.json"], "state dir must be skipped")
	assert.False(t, files["node_modules/pkg/index.js"], "node_modules must be skipped")
	assert.False(t, files["public/library/images/logo.png"], "ignored directory must be skipped")
}

func TestWalker_MissingRoot(t *testing.T) {
	walker := fs.NewWalker()
	count := 0
	for range walker.WalkFiles(filepath.Join(t.TempDir(), "missing"), nil) {
		count++
	}
	assert.Zero(t, count)
}

func TestResolver_ResolveInputs(t *testing.T) {
	root := themeTree(t)
	resolver := fs.NewResolver(fs.NewWalker())

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "top level scss with exclusion",
			patterns: []string{"./src/*.scss", "!./src/style-local.scss"},
			want:     []string{"src/ie.scss", "src/style.scss"},
		},
		{
			name:     "globstar",
			patterns: []string{"src/**/*.scss"},
			want:     []string{"src/ie.scss", "src/partials/_grid.scss", "src/style-local.scss", "src/style.scss"},
		},
		{
			name:     "literal file",
			patterns: []string{"public/library/js/scripts.js"},
			want:     []string{"public/library/js/scripts.js"},
		},
		{
			name:     "single star does not cross directories",
			patterns: []string{"public/library/js/*.js"},
			want:     []string{"public/library/js/scripts.js", "public/library/js/vendor.js"},
		},
		{
			name:     "alternatives",
			patterns: []string{"public/library/images/*.{png,jpg}"},
			want:     []string{"public/library/images/banner.jpg", "public/library/images/logo.png"},
		},
		{
			name:     "duplicates collapse",
			patterns: []string{"public/**/*.php", "public/header.php"},
			want:     []string{"public/header.php", "public/templates/single.php"},
		},
		{
			name:     "no match is empty",
			patterns: []string{"src/*.less", "missing/file.js"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ResolveInputs(tt.patterns, root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relativeAll(t, root, got))
			for _, p := range got {
				assert.True(t, filepath.IsAbs(p))
			}
		})
	}
}

func TestResolver_InvalidGlob(t *testing.T) {
	resolver := fs.NewResolver(fs.NewWalker())

	_, err := resolver.ResolveInputs([]string{"src/[.scss"}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrInvalidGlob.Error())
}

func TestCompilePattern(t *testing.T) {
	p, err := fs.CompilePattern("!./src/**/*.scss")
	require.NoError(t, err)
	assert.True(t, p.Exclude())
	assert.Equal(t, "src/**/*.scss", p.String())
	assert.True(t, p.Match("src/a/b/c.scss"))
	assert.True(t, p.Match("src/c.scss"))
	assert.False(t, p.Match("public/a.scss"))

	lead, err := fs.CompilePattern("**/*.php")
	require.NoError(t, err)
	assert.True(t, lead.Match("index.php"))
	assert.True(t, lead.Match("templates/single.php"))
}

func TestHasher_ComputeFileHash(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "scripts.js")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), domain.PrivateFilePerm))

	hasher := fs.NewHasher(fs.NewWalker())

	hash1, err := hasher.ComputeFileHash(path)
	require.NoError(t, err)
	assert.NotZero(t, hash1)

	hash2, err := hasher.ComputeFileHash(path)
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2)

	_, err = hasher.ComputeFileHash(filepath.Join(root, "missing.js"))
	require.Error(t, err)
}

func scriptsTask() *domain.Task {
	return &domain.Task{
		Name: domain.NewInternedString("scripts"),
		Streams: []domain.Stream{{
			Src: []string{"public/library/js/scripts.js"},
			Steps: []domain.StepSpec{
				{Use: "concat", With: map[string]any{"name": "all.js"}},
				{Use: "dest", With: map[string]any{"dir": "public/library/js/min"}},
			},
		}},
		Outputs: domain.NewInternedStrings([]string{"public/library/js/min"}),
	}
}

func TestHasher_ComputeInputHash(t *testing.T) {
	root := themeTree(t)
	hasher := fs.NewHasher(fs.NewWalker())
	inputs := []string{filepath.Join(root, "public/library/js/scripts.js")}

	base, err := hasher.ComputeInputHash(scriptsTask(), nil, inputs)
	require.NoError(t, err)
	assert.Len(t, base, 16)

	again, err := hasher.ComputeInputHash(scriptsTask(), nil, inputs)
	require.NoError(t, err)
	assert.Equal(t, base, again, "hash must be deterministic")

	t.Run("step options", func(t *testing.T) {
		task := scriptsTask()
		task.Streams[0].Steps[0].With["name"] = "bundle.js"
		h, err := hasher.ComputeInputHash(task, nil, inputs)
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})

	t.Run("environment", func(t *testing.T) {
		h, err := hasher.ComputeInputHash(scriptsTask(), map[string]string{"NODE_ENV": "production"}, inputs)
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})

	t.Run("file content", func(t *testing.T) {
		require.NoError(t, os.WriteFile(inputs[0], []byte("var a = 2;"), domain.PrivateFilePerm))
		h, err := hasher.ComputeInputHash(scriptsTask(), nil, inputs)
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})
}

func TestHasher_ComputeOutputHash(t *testing.T) {
	root := themeTree(t)
	hasher := fs.NewHasher(fs.NewWalker())

	h1, err := hasher.ComputeOutputHash([]string{"public/library/js/min"}, root)
	require.NoError(t, err)

	writeTree(t, root, map[string]string{"public/library/js/min/all.min.js": "var a=1"})
	h2, err := hasher.ComputeOutputHash([]string{"public/library/js/min"}, root)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	_, err = hasher.ComputeOutputHash([]string{"public/modules/critical-css.php"}, root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output file missing")
}
