package transform

import (
	"bytes"
	"context"
	"text/template"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

// NotifyStep emits a notification for the stream.
const NotifyStep = "notify"

// DefaultNotifyTitle is used when a notify step sets no title.
const DefaultNotifyTitle = "pour"

type notifyOptions struct {
	Message string `yaml:"message"`
	Title   string `yaml:"title"`
	OnLast  bool   `yaml:"onLast"`
}

// notifyData is the template data of a notify message.
type notifyData struct {
	fileData
	Count int
}

// Notify sends Message for every file, or once after the last file with OnLast.
// Message is a text/template over the file.
type Notify struct {
	title    string
	message  *template.Template
	onLast   bool
	notifier ports.Notifier
}

func newNotify(c *Catalog, spec domain.StepSpec, _ string) (ports.Transform, error) {
	var opts notifyOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	if opts.Message == "" {
		return nil, invalidOptions(spec, "message is required")
	}
	tmpl, err := template.New(NotifyStep).Parse(opts.Message)
	if err != nil {
		return nil, invalidOptions(spec, err.Error())
	}
	if opts.Title == "" {
		opts.Title = DefaultNotifyTitle
	}
	return &Notify{title: opts.Title, message: tmpl, onLast: opts.OnLast, notifier: c.notifier}, nil
}

// Name returns the step name.
func (n *Notify) Name() string { return NotifyStep }

// TransformStream notifies and passes the stream on unchanged.
func (n *Notify) TransformStream(_ context.Context, files []*domain.File) ([]*domain.File, error) {
	if len(files) == 0 {
		return files, nil
	}

	targets := files
	if n.onLast {
		targets = files[len(files)-1:]
	}
	for _, f := range targets {
		var buf bytes.Buffer
		if err := n.message.Execute(&buf, notifyData{fileData: newFileData(f), Count: len(files)}); err != nil {
			return nil, zerr.Wrap(err, "failed to render notification")
		}
		n.notifier.Notify(n.title, buf.String())
	}
	return files, nil
}
