package dynamic

import (
	"context"
	"errors"
	"strings"

	"github.com/ysmood/gson"
)

// fakeDriver scripts a page for tests: a fixed size-signal sequence,
// canned Eval results keyed by a substring of the JS, and static
// markup. The last size repeats once the sequence is exhausted.
type fakeDriver struct {
	sizes   []int
	sizeIdx int
	sizeErr error

	markup    string
	markupErr error

	// evalByNeedle maps a substring of the evaluated JS to the value the
	// page would return. Unmatched scripts yield an empty array.
	evalByNeedle map[string]any

	evaluated []string
	actions   []string
}

func (f *fakeDriver) ScrollTo(ctx context.Context, pos ScrollPosition) error {
	f.actions = append(f.actions, "scroll")
	return nil
}

func (f *fakeDriver) PressKey(ctx context.Context, key string) error {
	f.actions = append(f.actions, "key:"+key)
	return nil
}

func (f *fakeDriver) Click(ctx context.Context, selector string) error {
	f.actions = append(f.actions, "click:"+selector)
	return nil
}

func (f *fakeDriver) Eval(ctx context.Context, js string) (gson.JSON, error) {
	f.evaluated = append(f.evaluated, js)
	for needle, value := range f.evalByNeedle {
		if strings.Contains(js, needle) {
			return gson.New(value), nil
		}
	}
	return gson.New([]any{}), nil
}

func (f *fakeDriver) HTML(ctx context.Context) (string, error) {
	if f.markupErr != nil {
		return "", f.markupErr
	}
	return f.markup, nil
}

func (f *fakeDriver) URL(ctx context.Context) (string, error) {
	return "https://example.test/page", nil
}

func (f *fakeDriver) SizeSignal(ctx context.Context) (int, error) {
	if f.sizeErr != nil {
		return 0, f.sizeErr
	}
	if len(f.sizes) == 0 {
		return 0, errors.New("no scripted sizes")
	}
	i := f.sizeIdx
	if i >= len(f.sizes) {
		i = len(f.sizes) - 1
	}
	f.sizeIdx++
	return f.sizes[i], nil
}

func (f *fakeDriver) evaluatedContains(needle string) bool {
	for _, js := range f.evaluated {
		if strings.Contains(js, needle) {
			return true
		}
	}
	return false
}
