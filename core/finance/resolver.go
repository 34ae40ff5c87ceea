package finance

import "github.com/volatiletech/null/v8"

// AmountSource tags where a resolved student-fee amount came from.
type AmountSource int

const (
	// AmountUnresolved: no explicit amount and no standard fee to fall back on.
	AmountUnresolved AmountSource = iota
	// AmountExplicit: the caller provided the amount verbatim.
	// No bound checking applies; explicit overrides are accepted as-is.
	AmountExplicit
	// AmountFromStandard: copied from the (course, semester) StandardFee.
	AmountFromStandard
)

// ResolvedAmount is the outcome of the two-step amount resolution.
type ResolvedAmount struct {
	Source      AmountSource
	Amount      float64
	Description null.String
}

func (r ResolvedAmount) Resolved() bool { return r.Source != AmountUnresolved }

// ResolveAmount resolves a student fee's amount. An explicit amount always
// wins. Otherwise the standard fee for the pair supplies the amount and,
// when the caller gave no description, its description too. With neither,
// the result is AmountUnresolved.
func ResolveAmount(explicit *float64, description null.String, std *StandardFee) ResolvedAmount {
	if explicit != nil {
		return ResolvedAmount{Source: AmountExplicit, Amount: *explicit, Description: description}
	}
	if std != nil {
		desc := description
		if !desc.Valid {
			desc = std.Description
		}
		return ResolvedAmount{Source: AmountFromStandard, Amount: std.Amount, Description: desc}
	}
	return ResolvedAmount{Source: AmountUnresolved, Description: description}
}
