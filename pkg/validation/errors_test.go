package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindTitles(t *testing.T) {
	assert.Equal(t, "Structural Error", KindStructural.Title())
	assert.Equal(t, "Required Field Missing", KindRequiredFieldMissing.Title())
	assert.Equal(t, "Tool Validation Error", KindToolValidation.Title())

	for _, k := range AllKinds() {
		parsed, err := ParseKindTitle(k.Title())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("made_up")
	assert.Error(t, err)
}

func TestResultAccumulation(t *testing.T) {
	r := NewResult()
	assert.True(t, r.IsValid)

	r.AddWarning("turn %d looks odd", 1)
	assert.True(t, r.IsValid, "warnings never flip validity")
	assert.NoError(t, r.Err())

	id := 2
	r.AddError(ValidationError{Kind: KindSequence, Message: "Expected turn_id 2, got 3", TurnID: &id, Field: "turn_id", Position: 2})
	r.AddError(ValidationError{Kind: KindContent, Message: "too short", Position: 3})
	r.AddError(ValidationError{Kind: KindSequence, Message: "again", Position: 4})

	assert.False(t, r.IsValid)
	assert.Len(t, r.ByKind(KindContent), 1)
	assert.Empty(t, r.ByKind(KindStructural))
	assert.Len(t, r.ByKind(KindSequence), 2)
	assert.Equal(t, []ErrorKind{KindSequence, KindContent}, r.Kinds())
	assert.Equal(t, map[ErrorKind]int{KindSequence: 2, KindContent: 1}, r.CountByKind())

	err := r.Err()
	require.Error(t, err)
	var failed *FailedError
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, err.Error(), "found 3 validation error(s)")
	assert.Contains(t, err.Error(), "[sequence_error] position 2 (turn 2) turn_id: Expected turn_id 2, got 3")
}

func TestSuggestValue(t *testing.T) {
	assert.Equal(t, "Did you mean 'user'? Allowed values: user, assistant", suggestValue("User", []string{"user", "assistant"}))
	assert.Equal(t, "Change the value to one of: user, assistant", suggestValue("xyzzy", []string{"user", "assistant"}))
	assert.Equal(t, "", suggestValue("x", nil))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}
