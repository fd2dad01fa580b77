package transform

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
	"github.com/tdewolff/minify/v2/xml"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
)

// MinifyStep minifies stylesheets, scripts and markup in process.
const MinifyStep = "minify"

var mediaTypes = map[string]string{
	".css":  "text/css",
	".js":   "application/javascript",
	".mjs":  "application/javascript",
	".html": "text/html",
	".htm":  "text/html",
	".svg":  "image/svg+xml",
	".json": "application/json",
	".xml":  "text/xml",
}

type minifyOptions struct {
	Report bool `yaml:"report"`
}

// Minify minifies files by extension. Files of other types pass through untouched.
type Minify struct {
	m      *minify.M
	report bool
	logger ports.Logger
}

func newMinify(c *Catalog, spec domain.StepSpec, _ string) (ports.Transform, error) {
	var opts minifyOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile("[/+]json$"), json.Minify)
	m.AddFuncRegexp(regexp.MustCompile("[/+]xml$"), xml.Minify)

	return &Minify{m: m, report: opts.Report, logger: c.logger}, nil
}

// Name returns the step name.
func (m *Minify) Name() string { return MinifyStep }

// TransformFile minifies f.
func (m *Minify) TransformFile(_ context.Context, f *domain.File) (*domain.File, error) {
	mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(f.Path))]
	if !ok {
		return f, nil
	}

	out, err := m.m.Bytes(mediaType, f.Contents)
	if err != nil {
		return nil, err
	}

	if m.report {
		name := filepath.Base(f.Path)
		m.logger.Info(fmt.Sprintf("Original %s: %d", name, len(f.Contents)))
		m.logger.Info(fmt.Sprintf("New %s: %d", name, len(out)))
	}

	res := f.Clone()
	res.Contents = out
	return res, nil
}
