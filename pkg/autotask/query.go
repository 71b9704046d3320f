package autotask

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Operator is a comparison operator accepted by the Autotask query
// endpoints. The set is closed; anything else is rejected server-side.
type Operator string

// Query operators supported by the API.
const (
	OpEq         Operator = "eq"
	OpNotEq      Operator = "noteq"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpBeginsWith Operator = "beginsWith"
	OpEndsWith   Operator = "endsWith"
	OpContains   Operator = "contains"
	OpExist      Operator = "exist"
	OpNotExist   Operator = "notExist"
	OpIn         Operator = "in"
	OpNotIn      Operator = "notIn"
)

// ValidOperator reports whether op is one of the operators the query
// endpoints accept.
func ValidOperator(op Operator) bool {
	switch op {
	case OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte,
		OpBeginsWith, OpEndsWith, OpContains,
		OpExist, OpNotExist, OpIn, OpNotIn:
		return true
	}
	return false
}

// FilterClause is one condition in a query filter, serialized as
// {"op": ..., "field": ..., "value": ...} on the wire.
type FilterClause struct {
	Op    Operator `json:"op" yaml:"op"`
	Field string   `json:"field" yaml:"field"`
	Value any      `json:"value" yaml:"value"`
}

// defaultFilter matches every record. The query endpoints reject an
// empty filter array, so callers that want "everything" get this.
func defaultFilter() []FilterClause {
	return []FilterClause{{Op: OpGte, Field: "id", Value: 0}}
}

// NormalizeFilter converts the loose filter forms accepted by Query
// methods into the clause array the API expects.
//
// Accepted forms:
//   - nil or an empty map: the match-all default clause
//   - []FilterClause or *Filter: passed through as-is
//   - map[string]any: each key becomes a clause. A value that is itself
//     a map is treated as {operator: operand}; any other value becomes
//     an equality clause.
//
// Go maps are unordered, so map-form filters are processed in sorted
// key order to keep request bodies (and dedup keys) deterministic.
// Callers that care about clause order use []FilterClause or the
// Filter builder. A nested map with more than one key contributes only
// its first key in sorted order.
func NormalizeFilter(filter any) []FilterClause {
	switch f := filter.(type) {
	case nil:
		return defaultFilter()
	case []FilterClause:
		if len(f) == 0 {
			return defaultFilter()
		}
		return f
	case *Filter:
		if f == nil || len(f.clauses) == 0 {
			return defaultFilter()
		}
		return f.Clauses()
	case map[string]any:
		if len(f) == 0 {
			return defaultFilter()
		}
		fields := make([]string, 0, len(f))
		for field := range f {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		clauses := make([]FilterClause, 0, len(fields))
		for _, field := range fields {
			clauses = append(clauses, clauseFor(field, f[field]))
		}
		return clauses
	default:
		return defaultFilter()
	}
}

func clauseFor(field string, value any) FilterClause {
	nested, ok := value.(map[string]any)
	if !ok || len(nested) == 0 {
		return FilterClause{Op: OpEq, Field: field, Value: value}
	}

	ops := make([]string, 0, len(nested))
	for op := range nested {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	op := ops[0]
	return FilterClause{Op: Operator(op), Field: field, Value: nested[op]}
}

// Filter builds an ordered clause list fluently:
//
//	autotask.NewFilter().Eq("status", 1).Gte("createDate", cutoff)
type Filter struct {
	clauses []FilterClause
}

// NewFilter creates an empty filter builder.
func NewFilter() *Filter {
	return &Filter{}
}

// Where appends a clause with an explicit operator.
func (f *Filter) Where(field string, op Operator, value any) *Filter {
	f.clauses = append(f.clauses, FilterClause{Op: op, Field: field, Value: value})
	return f
}

// Eq appends an equality clause.
func (f *Filter) Eq(field string, value any) *Filter { return f.Where(field, OpEq, value) }

// NotEq appends an inequality clause.
func (f *Filter) NotEq(field string, value any) *Filter { return f.Where(field, OpNotEq, value) }

// Gt appends a greater-than clause.
func (f *Filter) Gt(field string, value any) *Filter { return f.Where(field, OpGt, value) }

// Gte appends a greater-or-equal clause.
func (f *Filter) Gte(field string, value any) *Filter { return f.Where(field, OpGte, value) }

// Lt appends a less-than clause.
func (f *Filter) Lt(field string, value any) *Filter { return f.Where(field, OpLt, value) }

// Lte appends a less-or-equal clause.
func (f *Filter) Lte(field string, value any) *Filter { return f.Where(field, OpLte, value) }

// Contains appends a substring-match clause.
func (f *Filter) Contains(field string, value any) *Filter {
	return f.Where(field, OpContains, value)
}

// BeginsWith appends a prefix-match clause.
func (f *Filter) BeginsWith(field string, value any) *Filter {
	return f.Where(field, OpBeginsWith, value)
}

// EndsWith appends a suffix-match clause.
func (f *Filter) EndsWith(field string, value any) *Filter {
	return f.Where(field, OpEndsWith, value)
}

// In appends a membership clause.
func (f *Filter) In(field string, values ...any) *Filter {
	return f.Where(field, OpIn, values)
}

// NotIn appends a non-membership clause.
func (f *Filter) NotIn(field string, values ...any) *Filter {
	return f.Where(field, OpNotIn, values)
}

// Exist appends a field-present clause.
func (f *Filter) Exist(field string) *Filter { return f.Where(field, OpExist, nil) }

// NotExist appends a field-absent clause.
func (f *Filter) NotExist(field string) *Filter { return f.Where(field, OpNotExist, nil) }

// Clauses returns a copy of the accumulated clauses in insertion order.
func (f *Filter) Clauses() []FilterClause {
	out := make([]FilterClause, len(f.clauses))
	copy(out, f.clauses)
	return out
}

// Page-size body keys. Top-level /query endpoints take "MaxRecords";
// child-collection query endpoints take "maxRecords". The API is
// inconsistent here and both spellings must be preserved per endpoint.
const (
	PageSizeKeyQuery      = "MaxRecords"
	PageSizeKeyChildQuery = "maxRecords"
)

// QueryParams carries the caller-facing query options. Filter accepts
// any form NormalizeFilter understands.
type QueryParams struct {
	Filter     any
	MaxRecords int
	Page       int
}

// Body assembles the POST body for a query endpoint. pageSizeKey is
// PageSizeKeyQuery or PageSizeKeyChildQuery depending on the endpoint.
func (q *QueryParams) Body(pageSizeKey string) map[string]any {
	body := map[string]any{}
	if q == nil {
		body["filter"] = defaultFilter()
		return body
	}
	body["filter"] = NormalizeFilter(q.Filter)
	if q.MaxRecords > 0 {
		body[pageSizeKey] = q.MaxRecords
	}
	if q.Page > 0 {
		body["page"] = q.Page
	}
	return body
}

// EncodeBody serializes the query body deterministically. Map keys are
// sorted by encoding/json, which is what makes the dedup key stable.
func (q *QueryParams) EncodeBody(pageSizeKey string) ([]byte, error) {
	data, err := json.Marshal(q.Body(pageSizeKey))
	if err != nil {
		return nil, fmt.Errorf("encoding query body: %w", err)
	}
	return data, nil
}
