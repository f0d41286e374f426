package domain

import (
	"regexp"
	"strings"
)

// ruleScope restricts a canonicalization rule to one of the two call sites.
// Vendor meter text and user-typed model names run through the same ordered
// table so that both paths always agree on the key for one logical model.
type ruleScope int

const (
	scopeAny ruleScope = iota
	scopeMeterText // vendor meter/SKU descriptions only
	scopeUserInput // user-typed model names only
)

type keyRule struct {
	scope ruleScope
	re    *regexp.Regexp
	build func(match []string) string
}

// keyRules is evaluated in order; the first matching rule wins. Order is
// load-bearing: the gpt-3.5 special case must run before the generic gpt
// rule ("35" would otherwise parse as a context-window suffix), and the
// o-series rule runs first overall.
var keyRules = []keyRule{
	{
		// o-series: "o3", "O-3", "openai.o3", "o3mini", "o 3 mini". The
		// leading "o" must not be preceded by a letter or digit, which keeps
		// "turbo 16k" and "gpt-4o" out of this rule. Digits are unbounded so
		// future o-series versions resolve without code changes.
		scope: scopeAny,
		re:    regexp.MustCompile(`(?:^|[^a-z0-9])o[ -]?([0-9]+)([ -]?mini)?`),
		build: func(match []string) string {
			key := "o" + match[1]
			if match[2] != "" {
				key += "-mini"
			}
			return key
		},
	},
	{
		// gpt-3.5 in any spelling, including the vendor's "gpt-35".
		scope: scopeAny,
		re:    regexp.MustCompile(`gpt-?3\.?5`),
		build: func([]string) string { return "gpt-35-turbo" },
	},
	{
		// Generic gpt-<major> with optional "turbo" and an optional
		// context-window or date suffix. "turbo" is consumed but not part of
		// the key; the "o" suffix joins without a hyphen (gpt-4o).
		scope: scopeAny,
		re:    regexp.MustCompile(`gpt[ -]?([0-9]+(?:\.[0-9]+)?)(?:[ -]?turbo)?(?:[ -]?(32k|16k|8k|1106|0125|o))?`),
		build: func(match []string) string {
			key := "gpt-" + strings.ReplaceAll(match[1], ".", "")
			switch match[2] {
			case "":
			case "o":
				key += "o"
			default:
				key += "-" + match[2]
			}
			return key
		},
	},
	{
		// Embedding meters name the family somewhere in the descriptive text.
		// Vendor text only: a user asking for an embedding model spells the
		// canonical name already.
		scope: scopeMeterText,
		re:    regexp.MustCompile(`embedding.*(ada|babbage|curie|davinci|gecko)|(ada|babbage|curie|davinci|gecko).*embedding`),
		build: func(match []string) string {
			family := match[1]
			if family == "" {
				family = match[2]
			}
			return "text-embedding-" + family
		},
	},
	{
		scope: scopeAny,
		re:    regexp.MustCompile(`dall-e`),
		build: func([]string) string { return "dall-e" },
	},
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// ModelKey canonicalizes a user-supplied model name. It is total: input that
// matches no known model family falls back to a hyphenated slug, which simply
// misses the price table later.
func ModelKey(name string) string {
	if key, ok := applyRules(name, scopeUserInput); ok {
		return key
	}
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// MeterModelKey canonicalizes vendor meter/SKU text. Unlike ModelKey there is
// no fallback: text naming no recognized model family reports false so the
// normalizer can drop the record (training, reserved-capacity and similar
// non-LLM meters).
func MeterModelKey(text string) (string, bool) {
	return applyRules(text, scopeMeterText)
}

func applyRules(text string, scope ruleScope) (string, bool) {
	lower := strings.ToLower(text)
	for _, rule := range keyRules {
		if rule.scope != scopeAny && rule.scope != scope {
			continue
		}
		match := rule.re.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		return rule.build(match), true
	}
	return "", false
}
