// Package stage gates which disclosure tiers of the cohort builder are
// visible: tier 0 shows criterion text, tier 1 adds field mappings, tier 2
// adds concept value widgets.
package stage

// Tier thresholds carried per backend turn.
const (
	TierCriteria     = 0
	TierFieldMapping = 1
	TierConcept      = 2
)

// Controller tracks the highest stage observed across backend turns. Partial
// responses that omit the stage, or carry a lower one, never regress the UI;
// Reset is the only way back to tier zero.
type Controller struct {
	current int
}

// NewController starts at tier zero.
func NewController() *Controller {
	return &Controller{}
}

// Observe folds a turn's stage into the controller. A nil stage means the
// turn did not carry one and the previous value is retained.
func (c *Controller) Observe(stage *int) {
	if stage == nil {
		return
	}
	if *stage > c.current {
		c.current = *stage
	}
}

// Current returns the effective stage.
func (c *Controller) Current() int {
	return c.current
}

// ShowFieldMapping reports whether the field-mapping tier is visible.
func (c *Controller) ShowFieldMapping() bool {
	return c.current >= TierFieldMapping
}

// ShowConceptMapping reports whether the concept value tier is visible.
func (c *Controller) ShowConceptMapping() bool {
	return c.current >= TierConcept
}

// Reset drops back to tier zero. Meant for explicit session resets only.
func (c *Controller) Reset() {
	c.current = 0
}
