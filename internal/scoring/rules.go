package scoring

import (
	"net/url"
	"regexp"
	"strings"
)

// Element kind names. These are stable identifiers: they appear in change
// records, score snapshots, and generator requests.
const (
	ElementDefinitionBlock  = "has_definition_block"
	ElementNumberedList     = "has_numbered_list"
	ElementBulletedList     = "has_bulleted_list"
	ElementQuestionHeadings = "has_question_headings"
	ElementFAQSchema        = "has_faq_schema"
	ElementHowToSchema      = "has_howto_schema"
	ElementTable            = "has_table"
	ElementCitations        = "has_citations"
)

// Rule is one weighted structural check. Rules are data: adding a detection
// means adding an entry, not new scoring logic.
type Rule struct {
	Name        string
	Points      int
	Description string
	Detect      func(content string) bool
}

// PatternRule builds a Rule whose detector is a case-insensitive regex with
// dotall matching, so block-level patterns may span lines.
func PatternRule(name string, points int, description, pattern string) Rule {
	re := regexp.MustCompile("(?is)" + pattern)
	return Rule{
		Name:        name,
		Points:      points,
		Description: description,
		Detect:      re.MatchString,
	}
}

var externalLinkRe = regexp.MustCompile(`(?i)href="(https?://[^"]+)"`)

// externalCitationRule detects links pointing outside the site's own host.
// RE2 has no negative lookahead, so host exclusion is done on the parsed URL.
func externalCitationRule(siteHost string) Rule {
	siteHost = strings.TrimPrefix(strings.ToLower(siteHost), "www.")
	return Rule{
		Name:        ElementCitations,
		Points:      1,
		Description: "External citations/sources",
		Detect: func(content string) bool {
			for _, m := range externalLinkRe.FindAllStringSubmatch(content, -1) {
				u, err := url.Parse(m[1])
				if err != nil {
					continue
				}
				host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
				if host != "" && host != siteHost {
					return true
				}
			}
			return false
		},
	}
}

// DefaultRules returns the production rule set. siteHost is the optimized
// site's hostname, excluded from the citation check.
func DefaultRules(siteHost string) []Rule {
	return []Rule{
		PatternRule(ElementDefinitionBlock, 2, "Definition block in first 200 words", `<div class="definition-block"`),
		PatternRule(ElementNumberedList, 1, "At least one numbered list", `<ol[^>]*>.*?</ol>`),
		PatternRule(ElementBulletedList, 1, "At least one bulleted list", `<ul[^>]*>.*?</ul>`),
		PatternRule(ElementQuestionHeadings, 1, "H2 headers as questions", `<h2[^>]*>[^<]*\?</h2>`),
		PatternRule(ElementFAQSchema, 2, "FAQ schema block", `wp:rank-math/faq-block`),
		PatternRule(ElementHowToSchema, 1, "HowTo schema markup", `"@type"\s*:\s*"HowTo"`),
		PatternRule(ElementTable, 1, "HTML table with data", `<table[^>]*>.*?</table>`),
		externalCitationRule(siteHost),
	}
}
