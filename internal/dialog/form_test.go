package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormIndexesFollowInsertionOrder(t *testing.T) {
	f := NewForm("title", "info")

	assert.Equal(t, 0, f.AddLabel("a"))
	assert.Equal(t, 1, f.AddTextField("b"))
	assert.Equal(t, 2, f.AddSelect([]string{"x", "y"}, 1, 120))
	assert.Equal(t, 3, f.AddCheckbox("c", true))
	assert.Equal(t, []string{"OK", "Cancel"}, f.Buttons)
	assert.Equal(t, NoView, f.InitialFirstResponder)
}

func TestAddSelectClampsSelection(t *testing.T) {
	f := NewForm("", "")
	i := f.AddSelect([]string{"x", "y"}, 7, 0)
	assert.Equal(t, 0, f.ViewAtIndex(i).Selected)
}

func TestAddSelectCopiesOptions(t *testing.T) {
	options := []string{"x", "y"}
	f := NewForm("", "")
	i := f.AddSelect(options, 0, 0)
	options[0] = "changed"
	assert.Equal(t, "x", f.ViewAtIndex(i).Options[0])
}

func TestChainKeyViews(t *testing.T) {
	f := NewForm("", "")
	a := f.AddTextField("")
	f.AddLabel("skip")
	b := f.AddSelect([]string{"x"}, 0, 0)
	c := f.AddCheckbox("c", false)

	f.ChainKeyViews(a, b, c)

	assert.Equal(t, b, f.ViewAtIndex(a).NextKeyView)
	assert.Equal(t, c, f.ViewAtIndex(b).NextKeyView)
	assert.Equal(t, NoView, f.ViewAtIndex(c).NextKeyView)
	assert.Equal(t, NoView, f.ViewAtIndex(1).NextKeyView)
}

func TestViewAtIndexOutOfRange(t *testing.T) {
	f := NewForm("", "")
	assert.Nil(t, f.ViewAtIndex(0))
	assert.Nil(t, f.ViewAtIndex(-1))
}

func TestConfirmCollectsInputValues(t *testing.T) {
	f := NewForm("", "")
	f.AddLabel("label")
	f.AddTextField("Paris")
	f.AddSelect([]string{"x", "y"}, 1, 0)
	f.AddCheckbox("remember", true)

	resp := f.Confirm()

	require.Equal(t, ButtonOK, resp.Button)
	assert.Equal(t, map[int]string{1: "Paris", 2: "y", 3: "1"}, resp.Values)
}

func TestCancel(t *testing.T) {
	resp := NewForm("", "").Cancel()
	assert.Equal(t, ButtonCancel, resp.Button)
	assert.Empty(t, resp.Values)
}

func TestElementKindString(t *testing.T) {
	assert.Equal(t, "label", KindLabel.String())
	assert.Equal(t, "text_field", KindTextField.String())
	assert.Equal(t, "select", KindSelect.String())
	assert.Equal(t, "checkbox", KindCheckbox.String())
	assert.Equal(t, "unknown", ElementKind(42).String())
}
