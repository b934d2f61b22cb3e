// Package dynamic extracts text from pages whose content materializes
// asynchronously after the initial load (infinite-scroll feeds, chat
// transcripts). It repeatedly perturbs the live page until the content
// stops growing, runs several independent extraction strategies against
// the settled page, and merges their outputs into one deduplicated
// corpus under a hard deadline.
package dynamic

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// ScrollPosition is a vertical position expressed as a fraction of the
// full document height.
type ScrollPosition float64

const (
	ScrollTop    ScrollPosition = 0
	ScrollMiddle ScrollPosition = 0.5
	ScrollBottom ScrollPosition = 1
)

// Driver is the interaction surface over a single live, script-capable
// page. All operations are sequential: the underlying rendering target
// is not safe for concurrent manipulation, so no two Driver calls may
// overlap for the same page.
//
// Every operation may fail (page navigated away, element missing,
// script error). The stabilization loop and the extraction strategies
// treat such failures as no-ops for that attempt, never as fatal.
type Driver interface {
	// ScrollTo scrolls the viewport to the given fractional position.
	ScrollTo(ctx context.Context, pos ScrollPosition) error

	// PressKey dispatches a named key ("Space", "PageDown", "End", "Home", ...).
	PressKey(ctx context.Context, key string) error

	// Click clicks the first element matching the CSS selector.
	Click(ctx context.Context, selector string) error

	// Eval runs a JS function expression in the page and returns its result.
	Eval(ctx context.Context, js string) (gson.JSON, error)

	// HTML returns the current rendered markup.
	HTML(ctx context.Context) (string, error)

	// URL returns the page's current navigational URL.
	URL(ctx context.Context) (string, error)

	// SizeSignal returns a cheap proxy for how much content is
	// currently rendered (rendered-markup character count).
	SizeSignal(ctx context.Context) (int, error)
}

// keyMap translates the schedule's key names to rod input keys.
var keyMap = map[string]input.Key{
	"Enter":    input.Enter,
	"Space":    input.Space,
	"PageUp":   input.PageUp,
	"PageDown": input.PageDown,
	"End":      input.End,
	"Home":     input.Home,
}

// pageDriver implements Driver over a rod page. Each call binds the
// caller's context to the page so deadlines propagate into CDP.
type pageDriver struct {
	page *rod.Page
}

// NewPageDriver wraps a rod page in the Driver interface. The page is
// borrowed: the driver never closes it or retains it past a call.
func NewPageDriver(page *rod.Page) Driver {
	return &pageDriver{page: page}
}

func (d *pageDriver) ScrollTo(ctx context.Context, pos ScrollPosition) error {
	js := fmt.Sprintf(`() => window.scrollTo(0, document.body.scrollHeight * %v)`, float64(pos))
	_, err := d.page.Context(ctx).Eval(js)
	return err
}

func (d *pageDriver) PressKey(ctx context.Context, key string) error {
	k, ok := keyMap[key]
	if !ok {
		return fmt.Errorf("unknown key: %s", key)
	}
	return d.page.Context(ctx).Keyboard.Press(k)
}

func (d *pageDriver) Click(ctx context.Context, selector string) error {
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (d *pageDriver) Eval(ctx context.Context, js string) (gson.JSON, error) {
	res, err := d.page.Context(ctx).Eval(js)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

func (d *pageDriver) HTML(ctx context.Context) (string, error) {
	return d.page.Context(ctx).HTML()
}

func (d *pageDriver) URL(ctx context.Context) (string, error) {
	res, err := d.page.Context(ctx).Eval(`() => window.location.href`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// SizeSignal measures the rendered markup length in-page, avoiding a
// full markup transfer over CDP on every stabilization attempt.
func (d *pageDriver) SizeSignal(ctx context.Context) (int, error) {
	res, err := d.page.Context(ctx).Eval(`() => document.documentElement.outerHTML.length`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}
