// Package plan loads the migration plan document: the old→new mode
// mapping table, the service compatibility contract, and the scan roots
// for the reference rewrite. The plan is immutable for the duration of
// a run.
package plan

import (
	"fmt"
	"os"
	"regexp"

	toml "github.com/pelletier/go-toml/v2"
)

// Identifier grammar shared with the rewriter. A key is a bare word on
// the left of : or =; a bare value runs until the first character
// outside the identifier class, with hyphens counting as identifier
// characters.
const (
	KeyExpr      = `[A-Za-z_][A-Za-z0-9_-]*`
	BoundaryExpr = `($|[^A-Za-z0-9_'"-])`
)

// Mapping is a single old-identifier → new-identifier pair.
type Mapping struct {
	Old string `toml:"old"`
	New string `toml:"new"`
}

// Contract lists the service names whose presence in the registry is
// mandatory (required) or advisory (optional).
type Contract struct {
	Required []string `toml:"required"`
	Optional []string `toml:"optional"`
}

// Root is one directory tree to scan for identifier references.
type Root struct {
	Dir        string   `toml:"dir"`
	Extensions []string `toml:"extensions"`
	// MaxDepth limits descent below Dir. Zero or negative means unlimited.
	MaxDepth int `toml:"max_depth"`
}

// Plan is the parsed migration.toml document.
type Plan struct {
	Mappings []Mapping `toml:"mapping"`
	Contract Contract  `toml:"contract"`
	Roots    []Root    `toml:"root"`
}

// Load reads and parses the plan document at path, then validates it.
// A plan that fails validation is returned alongside the errors so
// callers can print every problem at once.
func Load(path string) (*Plan, []ValidationError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading plan %s: %w", path, err)
	}

	var p Plan
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}

	return &p, Validate(&p), nil
}

// Validate checks a plan for structural correctness: at least one
// mapping, no empty or self-referential mappings, unique old
// identifiers, and no new identifier the rewrite patterns would match
// again. The collision rule is what makes a second rewrite pass a
// no-op.
func Validate(p *Plan) []ValidationError {
	var errs []ValidationError

	if len(p.Mappings) == 0 {
		errs = append(errs, ValidationError{
			Field: "mapping",
			Err:   fmt.Errorf("%w: at least one [[mapping]] is required", ErrMissingField),
		})
	}

	olds := make(map[string]bool, len(p.Mappings))
	for _, m := range p.Mappings {
		if m.Old == "" || m.New == "" {
			errs = append(errs, ValidationError{
				Field: "mapping",
				Err:   fmt.Errorf("%w: both old and new are required (old=%q new=%q)", ErrMissingField, m.Old, m.New),
			})
			continue
		}
		if m.Old == m.New {
			errs = append(errs, ValidationError{
				Field: "mapping",
				Err:   fmt.Errorf("%w: %q", ErrSelfMapping, m.Old),
			})
		}
		if olds[m.Old] {
			errs = append(errs, ValidationError{
				Field: "mapping",
				Err:   fmt.Errorf("%w: %q", ErrDuplicateOld, m.Old),
			})
		}
		olds[m.Old] = true
	}
	for _, m := range p.Mappings {
		if m.New == "" || m.Old == m.New {
			continue
		}
		for _, n := range p.Mappings {
			if n.Old == "" {
				continue
			}
			if rematches(n.Old, m.New) {
				errs = append(errs, ValidationError{
					Field: "mapping",
					Err:   fmt.Errorf("%w: a second pass would rewrite %q again (still matches %q)", ErrNewCollidesOld, m.New, n.Old),
				})
				break
			}
		}
	}

	for _, r := range p.Roots {
		if r.Dir == "" {
			errs = append(errs, ValidationError{
				Field: "root.dir",
				Err:   fmt.Errorf("%w: root.dir", ErrMissingField),
			})
		}
	}

	return errs
}

// rematches reports whether new, once written into a value position,
// would still be matched by the rewrite patterns for old: it begins
// with old at a token boundary, or embeds its own key/assignment
// context for old.
func rematches(old, new string) bool {
	quoted := regexp.QuoteMeta(old)
	asValue := regexp.MustCompile(`^` + quoted + BoundaryExpr)
	embedded := regexp.MustCompile(`\b` + KeyExpr + `[ \t]*[:=][ \t]*['"]?` + quoted)
	return asValue.MatchString(new) || embedded.MatchString(new)
}
