package transform

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"html/template"
	"io"
	"path/filepath"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

// StyleguideStep renders an HTML styleguide from the stylesheets of the stream.
const StyleguideStep = "styleguide"

//go:embed styleguide.html.tmpl
var styleguideTemplate string

var styleguidePage = template.Must(template.New(StyleguideStep).Parse(styleguideTemplate))

type styleguideOptions struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Styleguide appends a generated HTML page documenting the rules of every .css
// file in the stream. Comment blocks start new sections.
type Styleguide struct {
	name string
	file string
}

// styleguideSection groups the rules that follow a comment block.
type styleguideSection struct {
	Comment string
	Rules   []styleguideRule
}

type styleguideRule struct {
	Selector     string
	Declarations []styleguideDeclaration
}

type styleguideDeclaration struct {
	Property string
	Value    string
}

type styleguideSheet struct {
	Name     string
	Sections []styleguideSection
}

func newStyleguide(_ *Catalog, spec domain.StepSpec, _ string) (ports.Transform, error) {
	var opts styleguideOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		opts.Name = "Style Guide"
	}
	if opts.File == "" {
		opts.File = "index.html"
	}
	return &Styleguide{name: opts.Name, file: opts.File}, nil
}

// Name returns the step name.
func (s *Styleguide) Name() string { return StyleguideStep }

// TransformStream returns the stream followed by the generated page.
func (s *Styleguide) TransformStream(_ context.Context, files []*domain.File) ([]*domain.File, error) {
	if len(files) == 0 {
		return files, nil
	}

	var sheets []styleguideSheet
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f.Path), ".css") {
			continue
		}
		sections, err := parseStylesheet(f.Contents)
		if err != nil {
			return nil, zerr.With(err, "file", filepath.ToSlash(f.Relative()))
		}
		sheets = append(sheets, styleguideSheet{Name: filepath.ToSlash(f.Relative()), Sections: sections})
	}

	var buf bytes.Buffer
	if err := styleguidePage.Execute(&buf, struct {
		Title  string
		Sheets []styleguideSheet
	}{Title: s.name, Sheets: sheets}); err != nil {
		return nil, zerr.Wrap(err, "failed to render styleguide")
	}

	base := files[0].Base
	page := &domain.File{
		Path:     filepath.Join(base, filepath.FromSlash(s.file)),
		Base:     base,
		Contents: buf.Bytes(),
		Mode:     domain.FilePerm,
	}
	return append(files, page), nil
}

func parseStylesheet(src []byte) ([]styleguideSection, error) {
	p := css.NewParser(parse.NewInputBytes(src), false)

	sections := []styleguideSection{{}}
	var rule *styleguideRule
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, zerr.Wrap(err, "failed to parse stylesheet")
			}
			return compactSections(sections), nil
		case css.CommentGrammar:
			if rule == nil {
				sections = append(sections, styleguideSection{Comment: commentText(data)})
			}
		case css.BeginRulesetGrammar:
			current := &sections[len(sections)-1]
			current.Rules = append(current.Rules, styleguideRule{Selector: tokensText(p.Values())})
			rule = &current.Rules[len(current.Rules)-1]
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if rule != nil {
				rule.Declarations = append(rule.Declarations, styleguideDeclaration{
					Property: string(data),
					Value:    tokensText(p.Values()),
				})
			}
		case css.EndRulesetGrammar:
			rule = nil
		}
	}
}

func compactSections(sections []styleguideSection) []styleguideSection {
	out := sections[:0]
	for _, s := range sections {
		if len(s.Rules) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func commentText(data []byte) string {
	text := strings.TrimSuffix(strings.TrimPrefix(string(data), "/*"), "*/")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimLeft(strings.TrimSpace(l), "* ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func tokensText(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}
