package erp

// Expression is one node of an ERP domain filter. The wire format is Odoo's
// flattened prefix list, but building and composing filters is much less
// error-prone on a tree, so the flattening happens only in Flatten.
type Expression interface {
	expr()
}

// Clause is a single (field, operator, value) condition.
type Clause struct {
	Field string
	Op    string
	Value any
}

// And combines child expressions; AND is the implicit operator in the wire
// grammar, so a top-level And serializes to plain juxtaposition.
type And struct {
	Children []Expression
}

// Or combines exactly two operands with the explicit "|" prefix operator.
type Or struct {
	Left  Expression
	Right Expression
}

func (Clause) expr() {}
func (And) expr()    {}
func (Or) expr()     {}

// Flatten serializes expressions to the wire-level prefix list. The
// expressions in the slice are joined by implicit AND. Every "|" is followed
// by exactly two operands; an And nested inside an Or gets explicit "&"
// prefixes so it stays a single operand.
func Flatten(exprs ...Expression) []any {
	out := make([]any, 0, len(exprs)*2)
	for _, e := range exprs {
		out = appendTerm(out, e)
	}
	return out
}

func appendTerm(out []any, e Expression) []any {
	switch v := e.(type) {
	case Clause:
		return append(out, []any{v.Field, v.Op, v.Value})
	case And:
		for i := 1; i < len(v.Children); i++ {
			out = append(out, "&")
		}
		for _, child := range v.Children {
			out = appendTerm(out, child)
		}
		return out
	case Or:
		out = append(out, "|")
		out = appendTerm(out, v.Left)
		return appendTerm(out, v.Right)
	default:
		return out
	}
}

// SaleableOnly restricts to records flagged as sellable.
func SaleableOnly() Expression {
	return Clause{Field: "sale_ok", Op: "=", Value: true}
}

// ScopedToCompany allows records with no company set or the given company.
// Unscoped records are visible to every company in multi-company setups.
func ScopedToCompany(companyID int) Expression {
	return Or{
		Left:  Clause{Field: "company_id", Op: "=", Value: false},
		Right: Clause{Field: "company_id", Op: "=", Value: companyID},
	}
}

// UnderCategory matches records in the given category or any descendant.
func UnderCategory(categoryID int) Expression {
	return Clause{Field: "categ_id", Op: "child_of", Value: categoryID}
}

// CategoryNameMatches matches on the category display name, case-insensitive
// substring. Used only when the label could not be resolved to a category id.
func CategoryNameMatches(label string) Expression {
	return Clause{Field: "categ_id.name", Op: "ilike", Value: label}
}
