package finder

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftfinder/internal/domain"
)

type form url.Values

func (f form) Value(k string) string     { return url.Values(f).Get(k) }
func (f form) Values(k string) []string { return url.Values(f)[k] }

func TestBucketThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  Tier
	}{
		{0.85, Excellent},
		{0.80, Excellent},
		{0.79, Good},
		{0.60, Good},
		{0.59, Average},
		{0.40, Average},
		{0.39, Poor},
		{0, Poor},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Bucket(c.score), "score %v", c.score)
	}
	assert.Equal(t, "results.matchScore.fair", Bucket(0.1).Key())
	assert.Equal(t, 85, Percent(0.849))
	assert.Equal(t, 100, Percent(1))
}

func TestStepsClamp(t *testing.T) {
	w := New()
	w.Back()
	assert.Equal(t, 1, w.Step)
	for i := 0; i < 10; i++ {
		w.Next()
	}
	assert.Equal(t, 4, w.Step)
}

func TestToggleInterestCapsAtThree(t *testing.T) {
	w := New()
	w.ToggleInterest("Gaming")
	w.ToggleInterest("Music")
	w.ToggleInterest("Art")
	w.ToggleInterest("Travel")
	assert.Equal(t, []string{"Gaming", "Music", "Art"}, w.Interests)

	w.ToggleInterest("Music")
	assert.Equal(t, []string{"Gaming", "Art"}, w.Interests)
	w.ToggleInterest("Travel")
	assert.Equal(t, []string{"Gaming", "Art", "Travel"}, w.Interests)
}

func TestCriteriaLeavesOptionalFieldsEmpty(t *testing.T) {
	w := Wizard{Step: 4, Age: 25, Budget: 100, Gender: "Male", Relationship: "Friend", Interests: []string{"Gaming"}}
	c := w.Criteria()
	assert.Equal(t, domain.Criteria{Age: 25, Budget: 100, Interests: []string{"Gaming"}, Gender: "Male", Relationship: "Friend"}, c)
	c.Interests[0] = "x"
	assert.Equal(t, "Gaming", w.Interests[0])
}

func TestParseWizardCoercesInsteadOfRejecting(t *testing.T) {
	w, gaps := ParseWizard(form{
		"step":      {"9"},
		"age":       {""},
		"budget":    {"abc"},
		"gender":    {"female"},
		"interests": {"Gaming", "Gaming", "Music", "Art", "Travel"},
	})
	assert.Equal(t, 4, w.Step)
	assert.Equal(t, 0, w.Age)
	assert.Equal(t, 0.0, w.Budget)
	assert.Equal(t, "Female", w.Gender)
	assert.Equal(t, "", w.Relationship)
	assert.Equal(t, []string{"Gaming", "Music", "Art"}, w.Interests)
	require.Len(t, gaps, 2)
	assert.Equal(t, "age", gaps[0].Field)
	assert.Equal(t, "budget", gaps[1].Field)
}

func TestParseWizardNumbers(t *testing.T) {
	tests := []struct {
		age, budget string
		wantAge     int
		wantBudget  float64
		gapFields   []string
	}{
		{age: "25", budget: "300", wantAge: 25, wantBudget: 300},
		{age: "25.9", budget: "12.5", wantAge: 25, wantBudget: 12.5},
		{age: "120", budget: "0", wantAge: 120},
		{age: "121", budget: "10", wantBudget: 10, gapFields: []string{"age"}},
		{age: "1e20", budget: "Inf", gapFields: []string{"age", "budget"}},
		{age: "NaN", budget: "-Inf", gapFields: []string{"age", "budget"}},
		{age: "-1", budget: "-5", gapFields: []string{"age", "budget"}},
		{age: "+Inf", budget: "1e400", gapFields: []string{"age", "budget"}},
	}
	for _, tt := range tests {
		t.Run(tt.age+"/"+tt.budget, func(t *testing.T) {
			w, gaps := ParseWizard(form{"age": {tt.age}, "budget": {tt.budget}})
			assert.Equal(t, tt.wantAge, w.Age)
			assert.Equal(t, tt.wantBudget, w.Budget)
			var fields []string
			for _, g := range gaps {
				fields = append(fields, g.Field)
			}
			assert.Equal(t, tt.gapFields, fields)

			_, err := json.Marshal(w.Criteria())
			assert.NoError(t, err)
		})
	}
}

func TestWizardValuesRoundTrip(t *testing.T) {
	w := Wizard{Step: 3, Age: 30, Budget: 49.5, Gender: "Unisex", Relationship: "Colleague", Interests: []string{"Art"}}
	got, gaps := ParseWizard(form(w.Values()))
	assert.Empty(t, gaps)
	assert.Equal(t, w, got)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, Empty, Resolve(nil, nil).Phase)
	assert.Equal(t, Empty, Resolve([]domain.Recommendation{}, nil).Phase)
	out := Resolve([]domain.Recommendation{{Score: 0.5}}, nil)
	assert.Equal(t, Succeeded, out.Phase)
	assert.Len(t, out.Results, 1)
	failed := Resolve(nil, errors.New("down"))
	assert.Equal(t, Failed, failed.Phase)
	assert.EqualError(t, failed.Err, "down")
}
