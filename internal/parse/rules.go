package parse

import (
	"fmt"
	"regexp"
)

// ruleKind names each boundary classifier in the cascade. Keeping the
// variants explicit lets rules be added or reordered without touching the
// detector's control flow.
type ruleKind int

const (
	ruleCustom ruleKind = iota
	ruleMarkerWithSeparator
	ruleHeadingPageMarker
	ruleBareLineMarker
	ruleHorizontalRule
	ruleHTMLComment
	ruleLatexPagebreak
	ruleLatexNewpage
	ruleHeadingFallback
)

// rule matches a boundary at a single line. Two-line rules additionally
// constrain the following line via next.
type rule struct {
	kind ruleKind
	re   *regexp.Regexp
	next *regexp.Regexp
}

// matchAt reports whether the rule declares a boundary at lines[idx].
func (r rule) matchAt(lines []string, idx int) bool {
	if !r.re.MatchString(lines[idx]) {
		return false
	}
	if r.next != nil {
		return idx+1 < len(lines) && r.next.MatchString(lines[idx+1])
	}
	return true
}

var (
	separatorLineRe    = regexp.MustCompile(`^---\s*$`)
	pageHeadingNextRe  = regexp.MustCompile(`^#\s+Page\s+\d+`)
	headingPageRe      = regexp.MustCompile(`(?i)^\s*#{1,2}\s+page\s+\d+\s*$`)
	bareLinePageRe     = regexp.MustCompile(`(?i)^\s*\(?page\s+\d+\)?\s*$`)
	horizontalRuleRe   = regexp.MustCompile(`^-{3,}\s*$`)
	htmlCommentBreakRe = regexp.MustCompile(`^<!--\s*page\s*break?\s*-->`)
	latexPagebreakRe   = regexp.MustCompile(`^\s*\\pagebreak\s*$`)
	latexNewpageRe     = regexp.MustCompile(`^\s*\\newpage\s*$`)
	headingFallbackRe  = regexp.MustCompile(`^#{1,2}\s+.*$`)
)

// markerRuleCount is the size of the explicit page-marker family within
// defaultRules. The detector treats these as authoritative for a whole
// document when any line matches one of them.
const markerRuleCount = 3

// defaultRules returns the boundary cascade in priority order: the explicit
// page-marker family first, then the heuristic fallbacks.
func defaultRules() []rule {
	return []rule{
		{kind: ruleMarkerWithSeparator, re: separatorLineRe, next: pageHeadingNextRe},
		{kind: ruleHeadingPageMarker, re: headingPageRe},
		{kind: ruleBareLineMarker, re: bareLinePageRe},
		{kind: ruleHorizontalRule, re: horizontalRuleRe},
		{kind: ruleHTMLComment, re: htmlCommentBreakRe},
		{kind: ruleLatexPagebreak, re: latexPagebreakRe},
		{kind: ruleLatexNewpage, re: latexNewpageRe},
		{kind: ruleHeadingFallback, re: headingFallbackRe},
	}
}

// compileCustomRule builds the priority-0 rule from a user-supplied pattern.
// The pattern must match the whole line; a pattern that does not compile is
// a configuration error reported before any parsing begins.
func compileCustomRule(pattern string) (rule, error) {
	re, err := regexp.Compile(`^` + pattern + `\s*$`)
	if err != nil {
		return rule{}, fmt.Errorf("invalid custom page marker pattern %q: %w", pattern, err)
	}
	return rule{kind: ruleCustom, re: re}, nil
}
