package testutil

// FixedRunID always returns the same run id. Scenario runs use it so that
// journals of the same scenario are byte-identical.
type FixedRunID struct {
	id string
}

// NewFixedRunID returns a generator for id, or "test-run-default" when id
// is empty.
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate implements engine.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
