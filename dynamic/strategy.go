package dynamic

import (
	"context"
	"strings"

	"github.com/use-agent/deepfetch/cleaner"
)

// minFragmentLen is the floor below which extracted fragments are
// discarded at the source.
const minFragmentLen = 6

// Strategy is one independent extraction method. Strategies share no
// mutable state and are order-stable; each consumes the Driver and
// produces a candidate corpus.
type Strategy interface {
	// Name identifies the strategy in reports and logs.
	Name() string

	// Priority orders strategies for single-result selection and for
	// merge tie-breaking. Lower is preferred.
	Priority() int

	// Extract collects fragments from the settled page. An error means
	// the strategy contributes nothing; it is never fatal.
	Extract(ctx context.Context, d Driver) (*Corpus, error)
}

// Strategies returns the fixed strategy list in execution order.
func Strategies() []Strategy {
	return []Strategy{
		elementWalk{},
		textNodeWalk{},
		structuralFallback{},
		conversationSelector{},
	}
}

// elementWalk enumerates content-bearing elements and reads each one's
// user-visible text. Verbatim duplicates are skipped in-page; full
// containment pruning is deferred to the merge step to avoid quadratic
// work inside the browser.
type elementWalk struct{}

func (elementWalk) Name() string  { return "elements" }
func (elementWalk) Priority() int { return 2 }

const elementWalkJS = `() => {
	const sel = 'p, h1, h2, h3, h4, h5, h6, li, dd, dt, td, th, blockquote, pre, figcaption, summary, article, section, main';
	const out = [];
	const seen = new Set();
	for (const el of document.querySelectorAll(sel)) {
		const t = (el.innerText || '').trim();
		if (t.length < 6 || seen.has(t)) continue;
		seen.add(t);
		out.push(t);
	}
	return out;
}`

func (s elementWalk) Extract(ctx context.Context, d Driver) (*Corpus, error) {
	res, err := d.Eval(ctx, elementWalkJS)
	if err != nil {
		return nil, err
	}
	corpus := NewCorpus()
	for _, v := range res.Arr() {
		if t := strings.TrimSpace(v.Str()); len(t) >= minFragmentLen {
			corpus.Add(t, s.Priority())
		}
	}
	return corpus, nil
}

// textNodeWalk traverses text-bearing leaf nodes in document order via
// a TreeWalker, rejecting short nodes and near-universal boilerplate.
// The denylist stays narrow: legal footer noise, not a content
// classifier.
type textNodeWalk struct{}

func (textNodeWalk) Name() string  { return "text-nodes" }
func (textNodeWalk) Priority() int { return 3 }

const textNodeWalkJS = `() => {
	const walker = document.createTreeWalker(
		document.body,
		NodeFilter.SHOW_TEXT,
		{
			acceptNode: (node) => {
				const p = node.parentElement;
				if (p) {
					const tag = p.tagName;
					if (tag === 'SCRIPT' || tag === 'STYLE' || tag === 'NOSCRIPT') {
						return NodeFilter.FILTER_REJECT;
					}
				}
				return node.nodeValue.trim().length > 3 ?
					NodeFilter.FILTER_ACCEPT : NodeFilter.FILTER_REJECT;
			}
		}
	);
	const out = [];
	let node;
	while ((node = walker.nextNode())) {
		out.push(node.nodeValue.trim());
	}
	return out;
}`

var boilerplateMarkers = []string{"©", "cookie", "privacy policy", "all rights reserved"}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range boilerplateMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func (s textNodeWalk) Extract(ctx context.Context, d Driver) (*Corpus, error) {
	res, err := d.Eval(ctx, textNodeWalkJS)
	if err != nil {
		return nil, err
	}
	corpus := NewCorpus()
	for _, v := range res.Arr() {
		t := strings.TrimSpace(v.Str())
		if len(t) < minFragmentLen || isBoilerplate(t) {
			continue
		}
		corpus.Add(t, s.Priority())
	}
	return corpus, nil
}

// structuralFallback reads the rendered markup once and flattens it
// outside the live page, producing a single fragment. As long as the
// page has a body this always yields some text, which makes it the
// unconditional fallback in the selection rule.
type structuralFallback struct{}

func (structuralFallback) Name() string  { return "structural" }
func (structuralFallback) Priority() int { return 4 }

func (s structuralFallback) Extract(ctx context.Context, d Driver) (*Corpus, error) {
	markup, err := d.HTML(ctx)
	if err != nil {
		return nil, err
	}
	corpus := NewCorpus()
	if text := cleaner.Flatten(markup); text != "" {
		corpus.Add(text, s.Priority())
	}
	return corpus, nil
}

// conversationSelector probes selector patterns associated with chat
// and message UIs in priority order. The first pattern that yields
// elements with substantial text wins; later patterns are not tried.
type conversationSelector struct{}

func (conversationSelector) Name() string  { return "conversation" }
func (conversationSelector) Priority() int { return 1 }

// conversationSelectors covers the message-container markup of common
// chat frontends. Ordered from most to least specific.
var conversationSelectors = []string{
	`[data-message-author-role]`,
	`.conversation-turn`,
	`.message`,
	`[role="presentation"]`,
	`.model-response`,
	`.user-message`,
	`[data-testid*="conversation"]`,
	`[data-testid*="message"]`,
	`.chat-message`,
	`.response-container`,
}

const conversationProbeJS = `(sel) => {
	const out = [];
	for (const el of document.querySelectorAll(sel)) {
		const t = (el.innerText || '').trim();
		if (t.length > 10) out.push(t);
	}
	return out;
}`

func (s conversationSelector) Extract(ctx context.Context, d Driver) (*Corpus, error) {
	for _, sel := range conversationSelectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		js := `() => (` + conversationProbeJS + `)(` + jsString(sel) + `)`
		res, err := d.Eval(ctx, js)
		if err != nil {
			continue
		}
		arr := res.Arr()
		if len(arr) == 0 {
			continue
		}
		corpus := NewCorpus()
		for _, v := range arr {
			if t := strings.TrimSpace(v.Str()); len(t) >= minFragmentLen {
				corpus.Add(t, s.Priority())
			}
		}
		if corpus.Len() > 0 {
			return corpus, nil
		}
	}
	return NewCorpus(), nil
}

// jsString quotes s as a JS string literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
