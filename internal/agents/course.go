package agents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

// CourseAgent recommends one learning resource sized to the user's
// emotional stage. Best-effort: failure degrades to no recommendation.
type CourseAgent struct {
	store store.Store
	log   zerolog.Logger
}

// NewCourseAgent builds the agent.
func NewCourseAgent(s store.Store, log zerolog.Logger) *CourseAgent {
	return &CourseAgent{store: s, log: log}
}

func (a *CourseAgent) Name() string { return "course_recommendation" }

// Evaluate maps the stage to a difficulty ceiling and picks the hardest
// not-yet-completed course under it. Tie-break is deterministic: highest
// difficulty first, then lowest id.
func (a *CourseAgent) Evaluate(ctx context.Context, c *Context) (*model.AgentDecision, error) {
	stage := c.Memory.Stage()
	maxDifficulty := maxCourseDifficulty(stage)

	courses, err := a.store.Courses().ListIncomplete(ctx, c.UserID, maxDifficulty)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}

	result := &CourseResult{}
	reasoning := ""
	if len(courses) == 0 {
		result.HasRecommendation = false
		result.Message = "You're up to date on all recommended courses for now!"
		reasoning = fmt.Sprintf("No incomplete course at difficulty <= %d for %s stage.", maxDifficulty, stage)
	} else {
		result.HasRecommendation = true
		result.Course = courses[0]
		reasoning = fmt.Sprintf("Recommended %q: user in %s stage, difficulty ceiling %d.",
			courses[0].Title, stage, maxDifficulty)
	}
	c.Course = result

	input := map[string]any{"stage": stage, "maxDifficulty": maxDifficulty}
	return decision(c, a.Name(), input, result, 0.7, reasoning), nil
}

// maxCourseDifficulty maps the slow-moving stage to a cognitive ceiling.
func maxCourseDifficulty(stage model.Stage) int {
	switch stage {
	case model.StageDistress:
		return 1
	case model.StageStruggling:
		return 2
	case model.StageStabilizing, model.StageThriving:
		return 3
	default:
		return 1
	}
}
