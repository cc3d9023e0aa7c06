package rewrite

import (
	"regexp"
	"strings"

	"github.com/papapumpkin/modeshift/internal/plan"
)

// The key and bare-value boundary grammar lives in plan (plan.KeyExpr,
// plan.BoundaryExpr); plan validation applies the same grammar when it
// rejects mappings a second pass would rewrite again. Hyphens count as
// identifier characters so "code" never matches inside "code-review";
// quotes are excluded from the boundary so the quoted patterns own
// those contexts.

// ruleSet holds the compiled patterns for one mapping pair. Patterns
// match the old identifier only in argument/assignment/declaration
// contexts, never in free prose, and every pattern captures the
// surrounding syntax so replacement touches nothing but the identifier.
type ruleSet struct {
	old      string
	new      string
	patterns []*regexp.Regexp
}

// compile builds the fixed, ordered pattern set for each mapping.
func compile(mappings []plan.Mapping) []ruleSet {
	sets := make([]ruleSet, 0, len(mappings))
	for _, m := range mappings {
		old := regexp.QuoteMeta(m.Old)
		sets = append(sets, ruleSet{
			old: m.Old,
			new: m.New,
			patterns: []*regexp.Regexp{
				// "key": "old"
				regexp.MustCompile(`("` + plan.KeyExpr + `"\s*:\s*")` + old + `(")`),
				// 'key': 'old'
				regexp.MustCompile(`('` + plan.KeyExpr + `'\s*:\s*')` + old + `(')`),
				// key: "old"  /  key = "old"
				regexp.MustCompile(`\b(` + plan.KeyExpr + `[ \t]*[:=][ \t]*")` + old + `(")`),
				// key: 'old'  /  key = 'old'
				regexp.MustCompile(`\b(` + plan.KeyExpr + `[ \t]*[:=][ \t]*')` + old + `(')`),
				// key: old  /  key = old
				regexp.MustCompile(`(?m)\b(` + plan.KeyExpr + `[ \t]*[:=][ \t]*)` + old + plan.BoundaryExpr),
			},
		})
	}
	return sets
}

// apply rewrites all occurrences for every rule set, returning the new
// content and the number of replacements made.
func apply(content string, sets []ruleSet) (string, int) {
	total := 0
	for _, rs := range sets {
		// Dollar signs in the replacement would be read as group
		// references by ReplaceAllString.
		repl := strings.ReplaceAll(rs.new, "$", "$$")
		for _, re := range rs.patterns {
			n := len(re.FindAllStringIndex(content, -1))
			if n == 0 {
				continue
			}
			content = re.ReplaceAllString(content, `${1}`+repl+`${2}`)
			total += n
		}
	}
	return content, total
}
