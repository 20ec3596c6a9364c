package qerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("reading query: %w", Scope("carries", "cannot add to scope %s", "agent"))

	assert.True(t, errors.Is(err, ErrScope))
	assert.False(t, errors.Is(err, ErrValue))
	assert.Equal(t, ErrScope, KindOf(err))
}

func TestErrorMessage(t *testing.T) {
	err := Value("startDate", "%q is not a valid date", "nope")
	assert.Equal(t, `ValueError: startDate: "nope" is not a valid date`, err.Error())
	assert.Equal(t, "E203", err.Code())

	err = Structure("", "invalid query")
	assert.Equal(t, "StructureError: invalid query", err.Error())
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"ScopeError", ErrScope, true},
		{"scope", ErrScope, true},
		{"Value", ErrValue, true},
		{"structure", ErrStructure, true},
		{"TranslationError", ErrTranslation, true},
		{"bogus", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKind(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
