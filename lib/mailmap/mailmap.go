package mailmap

import (
	"regexp"
	"strings"

	"github.com/pescuma/thanks/lib/model"
)

type RuleKind int

const (
	// RuleProperName is "Proper Name <commit@email>".
	RuleProperName RuleKind = iota
	// RuleProperEmail is "<proper@email> <commit@email>".
	RuleProperEmail
	// RuleProperNameEmail is "Proper Name <proper@email> <commit@email>".
	RuleProperNameEmail
	// RuleProperNameEmailByNameEmail is "Proper Name <proper@email> Commit Name <commit@email>".
	RuleProperNameEmailByNameEmail
)

func (k RuleKind) String() string {
	switch k {
	case RuleProperName:
		return "name"
	case RuleProperEmail:
		return "email"
	case RuleProperNameEmail:
		return "name+email"
	case RuleProperNameEmailByNameEmail:
		return "name+email by name+email"
	default:
		return "unknown"
	}
}

type Rule struct {
	Kind        RuleKind
	ProperName  string
	ProperEmail string
	CommitName  string
	CommitEmail string
}

type replacement struct {
	name  *string
	email *string
}

type Mailmap struct {
	rules       []Rule
	byEmail     map[string]replacement
	byNameEmail map[model.Identity]model.Identity
}

const (
	ws         = `\s*`
	matchName  = `([^<>]*[^<>\s])`
	matchEmail = `<([^<>]+)>`
	lineEnd    = `\s*(?:#.*)?$`
)

type shape struct {
	kind  RuleKind
	re    *regexp.Regexp
	build func(m []string) Rule
}

// shapes are listed in match priority. The last one is not anchored at the end
// of the line: like git, anything after the commit email is ignored.
var shapes = []shape{
	{
		kind: RuleProperName,
		re:   regexp.MustCompile(`^` + ws + matchName + ws + matchEmail + lineEnd),
		build: func(m []string) Rule {
			return Rule{ProperName: m[1], CommitEmail: m[2]}
		},
	},
	{
		kind: RuleProperEmail,
		re:   regexp.MustCompile(`^` + ws + matchEmail + ws + matchEmail + lineEnd),
		build: func(m []string) Rule {
			return Rule{ProperEmail: m[1], CommitEmail: m[2]}
		},
	},
	{
		kind: RuleProperNameEmail,
		re:   regexp.MustCompile(`^` + ws + matchName + ws + matchEmail + ws + matchEmail + lineEnd),
		build: func(m []string) Rule {
			return Rule{ProperName: m[1], ProperEmail: m[2], CommitEmail: m[3]}
		},
	},
	{
		kind: RuleProperNameEmailByNameEmail,
		re:   regexp.MustCompile(`^` + ws + matchName + ws + matchEmail + ws + matchName + ws + matchEmail),
		build: func(m []string) Rule {
			return Rule{ProperName: m[1], ProperEmail: m[2], CommitName: m[3], CommitEmail: m[4]}
		},
	},
}

// Parse reads mailmap text. Lines that do not match any known shape are ignored.
func Parse(text string) *Mailmap {
	result := &Mailmap{
		byEmail:     map[string]replacement{},
		byNameEmail: map[model.Identity]model.Identity{},
	}

	for _, line := range strings.Split(text, "\n") {
		rule, ok := parseLine(line)
		if !ok {
			continue
		}

		result.add(rule)
	}

	return result
}

func parseLine(line string) (Rule, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return Rule{}, false
	}

	for _, s := range shapes {
		m := s.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		for i := range m {
			m[i] = strings.TrimSpace(m[i])
		}

		rule := s.build(m)
		rule.Kind = s.kind
		return rule, true
	}

	return Rule{}, false
}

func (m *Mailmap) add(rule Rule) {
	m.rules = append(m.rules, rule)

	switch rule.Kind {
	case RuleProperName:
		m.byEmail[lowerKey(rule.CommitEmail)] = replacement{name: &rule.ProperName}
	case RuleProperEmail:
		m.byEmail[lowerKey(rule.CommitEmail)] = replacement{email: &rule.ProperEmail}
	case RuleProperNameEmail:
		m.byEmail[lowerKey(rule.CommitEmail)] = replacement{name: &rule.ProperName, email: &rule.ProperEmail}
	case RuleProperNameEmailByNameEmail:
		key := model.NewIdentity(lowerKey(rule.CommitName), lowerKey(rule.CommitEmail))
		m.byNameEmail[key] = model.NewIdentity(rule.ProperName, rule.ProperEmail)
	}
}

// Resolve returns the canonical identity for a raw commit author. Email-only
// rules win over name+email rules.
func (m *Mailmap) Resolve(name string, email string) model.Identity {
	if m == nil {
		return model.NewIdentity(name, email)
	}

	if r, ok := m.byEmail[lowerKey(email)]; ok {
		result := model.NewIdentity(name, email)
		if r.name != nil {
			result.Name = *r.name
		}
		if r.email != nil {
			result.Email = *r.email
		}
		return result
	}

	if r, ok := m.byNameEmail[model.NewIdentity(lowerKey(name), lowerKey(email))]; ok {
		return r
	}

	return model.NewIdentity(name, email)
}

func (m *Mailmap) ResolveIdentity(id model.Identity) model.Identity {
	return m.Resolve(id.Name, id.Email)
}

// Rules returns the parsed rules in file order, including ones later overwritten
// by a rule with the same key.
func (m *Mailmap) Rules() []Rule {
	if m == nil {
		return nil
	}

	result := make([]Rule, len(m.rules))
	copy(result, m.rules)
	return result
}

func (m *Mailmap) Len() int {
	if m == nil {
		return 0
	}

	return len(m.byEmail) + len(m.byNameEmail)
}

func lowerKey(s string) string {
	return strings.ToLower(s)
}
