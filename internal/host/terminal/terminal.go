// Package terminal implements host.Host for the command line: layers come
// from flags, the dialog is a series of prompts and the layer fill is a
// download into a local file.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Togather-Foundation/mapgen/internal/dialog"
	"github.com/Togather-Foundation/mapgen/internal/host"
	"github.com/rs/zerolog"
)

// Answers pre-answers form inputs by their order of appearance per kind.
// An empty string means no answer; the prompt is shown or the pre-filled
// value kept.
type Answers struct {
	TextFields []string
	Selects    []string
	Checkboxes []string
}

func (a Answers) lookup(kind dialog.ElementKind, ordinal int) string {
	var list []string
	switch kind {
	case dialog.KindTextField:
		list = a.TextFields
	case dialog.KindSelect:
		list = a.Selects
	case dialog.KindCheckbox:
		list = a.Checkboxes
	}
	if ordinal < len(list) {
		return list[ordinal]
	}
	return ""
}

// Config configures a Terminal.
type Config struct {
	Layers  []host.Layer
	In      io.Reader
	Out     io.Writer
	Answers Answers
	// Prompt asks for every unanswered input. Without it the pre-filled
	// values are confirmed as they are.
	Prompt bool
	// Cancel dismisses every form with Cancel.
	Cancel bool
	// DryRun prints the image URL instead of downloading it.
	DryRun      bool
	OutputDir   string
	ResourceDir string
	HTTPClient  *http.Client
	// Progress shows a download progress bar on Out.
	Progress bool
}

// Terminal is a host.Host backed by a terminal session.
type Terminal struct {
	cfg    Config
	in     *bufio.Reader
	logger zerolog.Logger
}

var _ host.Host = (*Terminal)(nil)

// New creates a Terminal.
func New(cfg Config, logger zerolog.Logger) *Terminal {
	if cfg.In == nil {
		cfg.In = strings.NewReader("")
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &Terminal{
		cfg:    cfg,
		in:     bufio.NewReader(cfg.In),
		logger: logger.With().Str("component", "terminal").Logger(),
	}
}

// Selection returns the layers given on the command line.
func (t *Terminal) Selection(context.Context) ([]host.Layer, error) {
	return append([]host.Layer(nil), t.cfg.Layers...), nil
}

// ResourcePath resolves name inside the resource directory.
func (t *Terminal) ResourcePath(name string) string {
	if t.cfg.ResourceDir == "" {
		return name
	}
	return filepath.Join(t.cfg.ResourceDir, name)
}

// RunModal prints form and collects a value for each input element.
// Scripted answers are passed through unchecked so the dialog controller
// can reject values that are not options.
func (t *Terminal) RunModal(ctx context.Context, form *dialog.Form) (dialog.Response, error) {
	if t.cfg.Cancel {
		return form.Cancel(), nil
	}

	t.printf("%s\n", form.MessageText)
	if form.InformativeText != "" {
		t.printf("%s\n", form.InformativeText)
	}
	t.printf("\n")

	scripted := make(map[int]string)
	ordinals := make(map[dialog.ElementKind]int)
	for i := range form.Elements {
		if err := ctx.Err(); err != nil {
			return dialog.Response{}, err
		}

		e := form.ViewAtIndex(i)
		if !e.Input() {
			continue
		}
		ordinal := ordinals[e.Kind]
		ordinals[e.Kind]++

		if a := t.cfg.Answers.lookup(e.Kind, ordinal); a != "" {
			scripted[i] = a
			continue
		}
		if !t.cfg.Prompt {
			continue
		}
		if err := t.prompt(form, i); err != nil {
			return dialog.Response{}, err
		}
	}

	if t.cfg.Prompt {
		ok, err := t.confirm("Generate map?", true)
		if err != nil {
			return dialog.Response{}, err
		}
		if !ok {
			return form.Cancel(), nil
		}
	}

	resp := form.Confirm()
	for i, v := range scripted {
		resp.Values[i] = v
	}
	return resp, nil
}

func (t *Terminal) prompt(form *dialog.Form, i int) error {
	e := form.ViewAtIndex(i)
	question := labelBefore(form, i)

	switch e.Kind {
	case dialog.KindTextField:
		answer, err := t.ask(fmt.Sprintf("%s [%s]: ", question, e.Text))
		if err != nil {
			return err
		}
		if answer != "" {
			e.Text = answer
		}

	case dialog.KindSelect:
		t.printf("%s\n", question)
		for n, opt := range e.Options {
			t.printf("  %2d) %s\n", n+1, opt)
		}
		for {
			answer, err := t.ask(fmt.Sprintf("Choose 1-%d [%s]: ", len(e.Options), e.Value()))
			if err != nil {
				return err
			}
			if answer == "" {
				return nil
			}
			if idx := optionIndex(e.Options, answer); idx >= 0 {
				e.Selected = idx
				return nil
			}
			t.printf("%q is not one of the options\n", answer)
		}

	case dialog.KindCheckbox:
		checked, err := t.confirm(e.Text+"?", e.Checked)
		if err != nil {
			return err
		}
		e.Checked = checked
	}
	return nil
}

func (t *Terminal) confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := t.ask(fmt.Sprintf("%s [%s]: ", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// ask reads one line. End of input counts as a blank answer.
func (t *Terminal) ask(question string) (string, error) {
	t.printf("%s", question)
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		t.printf("\n")
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.cfg.Out, format, args...)
}

// labelBefore returns the closest non-blank label above element i, skipping
// hint lines in parentheses.
func labelBefore(form *dialog.Form, i int) string {
	for j := i - 1; j >= 0; j-- {
		e := form.ViewAtIndex(j)
		if e.Kind != dialog.KindLabel {
			break
		}
		text := strings.TrimSpace(e.Text)
		if text == "" || strings.HasPrefix(text, "(") {
			continue
		}
		return text
	}
	return "Value"
}

// optionIndex accepts an option label or its 1-based number. Labels win,
// so a zoom level typed as shown selects that level.
func optionIndex(options []string, answer string) int {
	for i, opt := range options {
		if strings.EqualFold(opt, answer) {
			return i
		}
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return n - 1
	}
	return -1
}
