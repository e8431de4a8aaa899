package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
	"github.com/secmon-lab/argus/pkg/domain/model"
)

// Condition is a parsed rule condition: one or more clauses joined by AND.
// A clause compares a transaction field with a literal, for example
// "amount > 10000", "country in [NG, RU]" or "merchant == acme".
type Condition struct {
	clauses []clause
}

type clause struct {
	field  string
	op     string
	number float64
	values []string
}

var (
	clausePattern = regexp.MustCompile(`(?i)^([a-z_]+)\s*(>=|<=|!=|==|=|>|<|\s+in\s+|\s+not\s+in\s+)\s*(.+)$`)
	andPattern    = regexp.MustCompile(`(?i)\s+and\s+`)
)

var numericFields = map[string]func(*model.Transaction) float64{
	"amount": func(txn *model.Transaction) float64 { return txn.Amount },
}

var textFields = map[string]func(*model.Transaction) string{
	"country":  func(txn *model.Transaction) string { return txn.Country },
	"currency": func(txn *model.Transaction) string { return txn.Currency },
	"merchant": func(txn *model.Transaction) string { return txn.Merchant },
	"account":  func(txn *model.Transaction) string { return txn.AccountID },
}

// ParseCondition parses a rule condition. Syntax errors wrap
// model.ErrValidation.
func ParseCondition(src string) (*Condition, error) {
	if strings.TrimSpace(src) == "" {
		return nil, goerr.Wrap(model.ErrValidation, "condition is empty")
	}

	var cond Condition
	for _, part := range andPattern.Split(strings.TrimSpace(src), -1) {
		c, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return nil, goerr.Wrap(err, "invalid condition", goerr.V("condition", src))
		}
		cond.clauses = append(cond.clauses, c)
	}
	return &cond, nil
}

func parseClause(src string) (clause, error) {
	m := clausePattern.FindStringSubmatch(src)
	if m == nil {
		return clause{}, goerr.Wrap(model.ErrValidation, "malformed clause", goerr.V("clause", src))
	}

	c := clause{
		field: strings.ToLower(m[1]),
		op:    strings.Join(strings.Fields(strings.ToLower(m[2])), " "),
	}
	if c.op == "=" {
		c.op = "=="
	}
	value := strings.TrimSpace(m[3])

	if _, ok := numericFields[c.field]; ok {
		if c.op == "in" || c.op == "not in" {
			return clause{}, goerr.Wrap(model.ErrValidation, "list operator on numeric field", goerr.V("clause", src))
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return clause{}, goerr.Wrap(model.ErrValidation, "numeric field needs a number", goerr.V("clause", src))
		}
		c.number = n
		return c, nil
	}

	if _, ok := textFields[c.field]; !ok {
		return clause{}, goerr.Wrap(model.ErrValidation, "unknown field", goerr.V("field", c.field))
	}

	switch c.op {
	case "==", "!=":
		c.values = []string{unquote(value)}
	case "in", "not in":
		if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
			return clause{}, goerr.Wrap(model.ErrValidation, "list must be enclosed in brackets", goerr.V("clause", src))
		}
		items := strings.Split(strings.TrimSuffix(strings.TrimPrefix(value, "["), "]"), ",")
		c.values = lo.Compact(lo.Map(items, func(item string, _ int) string {
			return unquote(strings.TrimSpace(item))
		}))
		if len(c.values) == 0 {
			return clause{}, goerr.Wrap(model.ErrValidation, "list is empty", goerr.V("clause", src))
		}
	default:
		return clause{}, goerr.Wrap(model.ErrValidation, "ordering operator on text field", goerr.V("clause", src))
	}
	return c, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Match reports whether txn satisfies every clause. Text comparisons ignore
// case.
func (c *Condition) Match(txn *model.Transaction) bool {
	for _, cl := range c.clauses {
		if !cl.match(txn) {
			return false
		}
	}
	return true
}

func (cl clause) match(txn *model.Transaction) bool {
	if get, ok := numericFields[cl.field]; ok {
		v := get(txn)
		switch cl.op {
		case ">":
			return v > cl.number
		case ">=":
			return v >= cl.number
		case "<":
			return v < cl.number
		case "<=":
			return v <= cl.number
		case "==":
			return v == cl.number
		case "!=":
			return v != cl.number
		}
		return false
	}

	v := textFields[cl.field](txn)
	found := lo.ContainsBy(cl.values, func(item string) bool {
		return strings.EqualFold(item, v)
	})
	switch cl.op {
	case "==", "in":
		return found
	case "!=", "not in":
		return !found
	}
	return false
}
