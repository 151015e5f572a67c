package wechat

import "strings"

// escapeHTML applies the minimal escaping needed for literal display in the
// editor: &, < and > only. Values are escaped before substitution; the
// substitution itself never rewrites anything.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// fill instantiates a fragment template by exact string substitution of
// literal placeholder tokens. pairs alternates placeholder and value. This is
// the whole templating contract: no conditionals, no loops, no escaping of
// placeholder syntax inside values.
func fill(tpl string, pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		tpl = strings.ReplaceAll(tpl, pairs[i], pairs[i+1])
	}
	return tpl
}
