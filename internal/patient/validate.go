package patient

import "strings"

const reasonAge = "must be a non-negative whole number"

// Validate checks the required fields in form order (name, age, village) and
// returns the trimmed, typed fields. The first failing field is reported.
func (in Input) Validate() (Fields, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Fields{}, &ValidationError{Field: "name"}
	}
	if !in.Age.Present() {
		return Fields{}, &ValidationError{Field: "age"}
	}
	age, ok := in.Age.Value()
	if !ok || age < 0 || age > MaxAge {
		return Fields{}, &ValidationError{Field: "age", Reason: reasonAge}
	}
	village := strings.TrimSpace(in.Village)
	if village == "" {
		return Fields{}, &ValidationError{Field: "village"}
	}
	return Fields{Name: name, Age: age, Village: village}, nil
}
