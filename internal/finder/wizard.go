// Package finder holds the recommendation wizard: its steps, the criteria
// it builds and how results are presented.
package finder

import (
	"math"
	"strconv"
	"strings"

	"giftfinder/internal/domain"
)

const (
	FirstStep    = 1
	LastStep     = 4
	MaxInterests = 3
	MaxAge       = 120
)

var (
	Genders       = []string{"Male", "Female", "Unisex"}
	Relationships = []string{"Friend", "Family", "Partner", "Colleague"}
	Interests     = []string{"Gaming", "Technology", "Music", "Sports", "Travel", "Art"}
)

// Wizard is the state of the four-step form. Step 1 asks age and budget,
// then gender, relationship and interests.
type Wizard struct {
	Step         int
	Age          int
	Budget       float64
	Gender       string
	Relationship string
	Interests    []string
}

func New() Wizard { return Wizard{Step: FirstStep} }

func clampStep(s int) int {
	if s < FirstStep {
		return FirstStep
	}
	if s > LastStep {
		return LastStep
	}
	return s
}

func (w *Wizard) Next() { w.Step = clampStep(w.Step + 1) }
func (w *Wizard) Back() { w.Step = clampStep(w.Step - 1) }

func (w Wizard) HasInterest(v string) bool {
	for _, i := range w.Interests {
		if i == v {
			return true
		}
	}
	return false
}

// ToggleInterest removes v when selected, otherwise adds it unless the
// selection is already full.
func (w *Wizard) ToggleInterest(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	for i, cur := range w.Interests {
		if cur == v {
			w.Interests = append(w.Interests[:i:i], w.Interests[i+1:]...)
			return
		}
	}
	if len(w.Interests) >= MaxInterests {
		return
	}
	w.Interests = append(w.Interests, v)
}

// Criteria is the request body for this wizard. Occasion and personality
// are never asked and stay empty.
func (w Wizard) Criteria() domain.Criteria {
	interests := make([]string, len(w.Interests))
	copy(interests, w.Interests)
	return domain.Criteria{
		Age:          w.Age,
		Budget:       w.Budget,
		Interests:    interests,
		Gender:       w.Gender,
		Relationship: w.Relationship,
	}
}

// ValidationGap records a field that was coerced instead of rejected.
type ValidationGap struct {
	Field string
	Raw   string
}

// Form is the subset of a submitted form the wizard reads.
type Form interface {
	Value(key string) string
	Values(key string) []string
}

// ParseWizard rebuilds the wizard from hidden and visible fields. Empty or
// non-numeric age and budget become 0 and are reported as gaps.
func ParseWizard(f Form) (Wizard, []ValidationGap) {
	var gaps []ValidationGap
	w := Wizard{Step: FirstStep}
	if s, err := strconv.Atoi(strings.TrimSpace(f.Value("step"))); err == nil {
		w.Step = clampStep(s)
	}

	rawAge := strings.TrimSpace(f.Value("age"))
	if fl, ok := number(rawAge); ok && fl <= MaxAge {
		w.Age = int(fl)
	} else {
		gaps = append(gaps, ValidationGap{Field: "age", Raw: rawAge})
	}

	rawBudget := strings.TrimSpace(f.Value("budget"))
	if fl, ok := number(rawBudget); ok {
		w.Budget = fl
	} else {
		gaps = append(gaps, ValidationGap{Field: "budget", Raw: rawBudget})
	}

	w.Gender = oneOf(f.Value("gender"), Genders)
	w.Relationship = oneOf(f.Value("relationship"), Relationships)
	for _, v := range f.Values("interests") {
		if !w.HasInterest(strings.TrimSpace(v)) {
			w.ToggleInterest(v)
		}
	}
	return w, gaps
}

// number parses a finite, non-negative value.
func number(raw string) (float64, bool) {
	fl, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(fl) || math.IsInf(fl, 0) || fl < 0 {
		return 0, false
	}
	return fl, true
}

func oneOf(v string, allowed []string) string {
	v = strings.TrimSpace(v)
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return a
		}
	}
	return ""
}

// Values renders the state as form values for the hidden fields.
func (w Wizard) Values() map[string][]string {
	out := map[string][]string{
		"step":         {strconv.Itoa(w.Step)},
		"age":          {strconv.Itoa(w.Age)},
		"budget":       {strconv.FormatFloat(w.Budget, 'f', -1, 64)},
		"gender":       {w.Gender},
		"relationship": {w.Relationship},
	}
	if len(w.Interests) > 0 {
		out["interests"] = append([]string{}, w.Interests...)
	}
	return out
}
