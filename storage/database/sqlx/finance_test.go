package sqlxrepos

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx/reflectx"

	"github.com/tshiala/kampus/core/finance"
)

// mapper mirrors sqlx's default field mapping (db tag, lowercased field names).
var mapper = reflectx.NewMapperFunc("db", strings.ToLower)

// Every column selected by the finance queries must have a scan destination
// on its model; StructScan fails the whole row otherwise.
func Test_financeColumnMapping(t *testing.T) {
	tests := []struct {
		name    string
		model   interface{}
		columns []string
	}{
		{
			name:    "standard fee",
			model:   finance.StandardFee{},
			columns: []string{"id", "course_id", "semester_id", "name", "amount", "description", "created_at", "updated_at"},
		},
		{
			name:    "student fee",
			model:   finance.StudentFee{},
			columns: []string{"id", "student_id", "course_id", "semester_id", "amount", "description", "created_at", "updated_at"},
		},
		{
			name:    "payment",
			model:   finance.Payment{},
			columns: []string{"id", "student_id", "student_fee_id", "amount", "payment_date", "payment_method", "transaction_id", "notes"},
		},
		{
			name:    "receipt",
			model:   finance.Receipt{},
			columns: []string{"id", "payment_id", "receipt_number", "generated_at", "pdf_path"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traversals := mapper.TraversalsByName(reflect.TypeOf(tt.model), tt.columns)
			for i, traversal := range traversals {
				if len(traversal) == 0 {
					t.Errorf("column %q has no destination field on %T", tt.columns[i], tt.model)
				}
			}
		})
	}
}
