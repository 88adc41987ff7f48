package repository

import (
	"strconv"
	"strings"
)

// ownerScope builds a WHERE clause whose first condition is always the
// owner check. Every user-facing query is assembled through it.
type ownerScope struct {
	conds []string
	args  []any
}

func owned(column string, userID int64) *ownerScope {
	s := &ownerScope{}
	s.eq(column, userID)
	return s
}

// arg registers a bind value and returns its placeholder.
func (s *ownerScope) arg(v any) string {
	s.args = append(s.args, v)
	return "$" + strconv.Itoa(len(s.args))
}

func (s *ownerScope) eq(column string, v any) *ownerScope {
	s.conds = append(s.conds, column+" = "+s.arg(v))
	return s
}

func (s *ownerScope) and(cond string) *ownerScope {
	s.conds = append(s.conds, cond)
	return s
}

func (s *ownerScope) where() string {
	return " WHERE " + strings.Join(s.conds, " AND ")
}

// containsPattern turns user input into an ILIKE substring pattern with
// the LIKE metacharacters escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
