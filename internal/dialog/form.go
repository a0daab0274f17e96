// Package dialog builds the settings form shown before a map is generated
// and turns the host's answer back into Settings.
package dialog

// ElementKind identifies a form control.
type ElementKind int

const (
	KindLabel ElementKind = iota
	KindTextField
	KindSelect
	KindCheckbox
)

func (k ElementKind) String() string {
	switch k {
	case KindLabel:
		return "label"
	case KindTextField:
		return "text_field"
	case KindSelect:
		return "select"
	case KindCheckbox:
		return "checkbox"
	default:
		return "unknown"
	}
}

// NoView marks an absent key-view link.
const NoView = -1

// Element is one control of the form. Its position in Form.Elements is
// the index the response parser reads values back from.
type Element struct {
	Kind ElementKind
	// Text is the label text, the text field value or the checkbox title.
	Text     string
	Options  []string
	Selected int
	Checked  bool
	Width    float64
	// NextKeyView is the index focused after this element, or NoView.
	NextKeyView int
}

// Input reports whether the element carries a user editable value.
func (e Element) Input() bool {
	return e.Kind != KindLabel
}

// Value is the element's current value as it appears in a Response.
func (e Element) Value() string {
	switch e.Kind {
	case KindSelect:
		if e.Selected >= 0 && e.Selected < len(e.Options) {
			return e.Options[e.Selected]
		}
		return ""
	case KindCheckbox:
		if e.Checked {
			return "1"
		}
		return "0"
	default:
		return e.Text
	}
}

// Button is the button that dismissed the form.
type Button int

const (
	ButtonOK     Button = 1000
	ButtonCancel Button = 1001
)

// Form is a modal alert with accessory controls, OK and Cancel buttons.
type Form struct {
	MessageText     string
	InformativeText string
	Icon            string
	Elements        []Element
	Buttons         []string
	// InitialFirstResponder is the index focused when the form opens.
	InitialFirstResponder int
}

// NewForm returns an empty form with the OK and Cancel buttons.
func NewForm(message, informative string) *Form {
	return &Form{
		MessageText:           message,
		InformativeText:       informative,
		Buttons:               []string{"OK", "Cancel"},
		InitialFirstResponder: NoView,
	}
}

func (f *Form) add(e Element) int {
	e.NextKeyView = NoView
	f.Elements = append(f.Elements, e)
	return len(f.Elements) - 1
}

// AddLabel appends a static text line.
func (f *Form) AddLabel(text string) int {
	return f.add(Element{Kind: KindLabel, Text: text})
}

// AddTextField appends a single line text input.
func (f *Form) AddTextField(value string) int {
	return f.add(Element{Kind: KindTextField, Text: value})
}

// AddSelect appends a dropdown with selected pre-selected.
func (f *Form) AddSelect(options []string, selected int, width float64) int {
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	return f.add(Element{
		Kind:     KindSelect,
		Options:  append([]string(nil), options...),
		Selected: selected,
		Width:    width,
	})
}

// AddCheckbox appends a titled checkbox.
func (f *Form) AddCheckbox(title string, checked bool) int {
	return f.add(Element{Kind: KindCheckbox, Text: title, Checked: checked})
}

// ViewAtIndex returns the element at index i, or nil.
func (f *Form) ViewAtIndex(i int) *Element {
	if i < 0 || i >= len(f.Elements) {
		return nil
	}
	return &f.Elements[i]
}

// ChainKeyViews links the given element indexes in tab order.
func (f *Form) ChainKeyViews(indexes ...int) {
	for i := 0; i+1 < len(indexes); i++ {
		if e := f.ViewAtIndex(indexes[i]); e != nil {
			e.NextKeyView = indexes[i+1]
		}
	}
}

// Response is the host's answer to a form: the dismissing button and the
// final value of every input element keyed by its index.
type Response struct {
	Button Button
	Values map[int]string
}

// Confirm builds an OK response from the form's current values.
func (f *Form) Confirm() Response {
	resp := Response{Button: ButtonOK, Values: make(map[int]string)}
	for i, e := range f.Elements {
		if e.Input() {
			resp.Values[i] = e.Value()
		}
	}
	return resp
}

// Cancel builds a Cancel response.
func (f *Form) Cancel() Response {
	return Response{Button: ButtonCancel}
}
