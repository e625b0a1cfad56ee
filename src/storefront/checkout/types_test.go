package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		info   CustomerInfo
		fields []string
	}{
		{name: "valid", info: CustomerInfo{Name: "Ana", Email: "ana@example.com"}},
		{name: "phone optional and free-form", info: CustomerInfo{Name: "Ana", Email: "ana@example.com", Phone: "+53 (7) 555"}},
		{name: "whitespace trimmed", info: CustomerInfo{Name: " Ana ", Email: " ana@example.com "}},
		{name: "blank name", info: CustomerInfo{Name: "   ", Email: "ana@example.com"}, fields: []string{"name"}},
		{name: "missing email", info: CustomerInfo{Name: "Ana"}, fields: []string{"email"}},
		{name: "no at sign", info: CustomerInfo{Name: "Ana", Email: "ana.example.com"}, fields: []string{"email"}},
		{name: "no dot in domain", info: CustomerInfo{Name: "Ana", Email: "ana@localhost"}, fields: []string{"email"}},
		{name: "display name form", info: CustomerInfo{Name: "Ana", Email: "Ana <ana@example.com>"}, fields: []string{"email"}},
		{name: "everything missing", info: CustomerInfo{}, fields: []string{"name", "email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			verrs, ok := err.(ValidationErrors)
			if assert.True(t, ok, "want ValidationErrors, got %T", err) {
				var got []string
				for _, e := range verrs {
					got = append(got, e.Field)
				}
				assert.Equal(t, tt.fields, got)
			}
		})
	}
}

func TestStateBusy(t *testing.T) {
	for s, want := range map[State]bool{
		Idle: false, CollectingInfo: true, Submitting: true,
		Succeeded: false, Failed: false, Cancelled: false,
	} {
		assert.Equal(t, want, s.busy(), s.String())
	}
}
