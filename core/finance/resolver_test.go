package finance

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

func TestResolveAmount(t *testing.T) {
	fPtr := func(f float64) *float64 { return &f }
	std := &StandardFee{
		CourseID:    1,
		SemesterID:  2,
		Name:        "Tuition",
		Amount:      1500,
		Description: null.StringFrom("Standard tuition"),
	}

	tests := []struct {
		name       string
		explicit   *float64
		desc       null.String
		std        *StandardFee
		wantSource AmountSource
		wantAmount float64
		wantDesc   null.String
	}{
		{
			name: "no amount, no standard fee", wantSource: AmountUnresolved,
		},
		{
			name: "explicit amount wins", explicit: fPtr(1000), std: std,
			wantSource: AmountExplicit, wantAmount: 1000,
		},
		{
			name: "explicit zero is still explicit", explicit: fPtr(0), std: std,
			wantSource: AmountExplicit, wantAmount: 0,
		},
		{
			name: "explicit amount keeps caller description", explicit: fPtr(750), desc: null.StringFrom("Scholarship rate"), std: std,
			wantSource: AmountExplicit, wantAmount: 750, wantDesc: null.StringFrom("Scholarship rate"),
		},
		{
			name: "standard fee fallback", std: std,
			wantSource: AmountFromStandard, wantAmount: 1500, wantDesc: null.StringFrom("Standard tuition"),
		},
		{
			name: "standard fee fallback keeps caller description", desc: null.StringFrom("Late registration"), std: std,
			wantSource: AmountFromStandard, wantAmount: 1500, wantDesc: null.StringFrom("Late registration"),
		},
		{
			name: "unresolved keeps caller description", desc: null.StringFrom("???"),
			wantSource: AmountUnresolved, wantDesc: null.StringFrom("???"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveAmount(tt.explicit, tt.desc, tt.std)
			if got.Source != tt.wantSource {
				t.Errorf("ResolveAmount() source = %v, want %v", got.Source, tt.wantSource)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("ResolveAmount() amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if got.Description != tt.wantDesc {
				t.Errorf("ResolveAmount() description = %v, want %v", got.Description, tt.wantDesc)
			}
			if got.Resolved() != (tt.wantSource != AmountUnresolved) {
				t.Errorf("ResolveAmount() resolved = %v, want %v", got.Resolved(), tt.wantSource != AmountUnresolved)
			}
		})
	}
}
