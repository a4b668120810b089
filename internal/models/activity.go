package models

import "time"

// Activity is one day's practice content for one age band: a scenario,
// an ordered list of prompts, and the takeaway shown after the last prompt.
// Activities are produced by the content pipeline and are read-only here.
type Activity struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	DayNumber         int    `json:"day_number"`
	AgeBand           string `json:"age_band"`
	ModuleName        string `json:"module_name"`
	ModuleDisplayName string `json:"module_display_name"`

	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	SkillFocus   string  `json:"skill_focus"`
	Category     *string `json:"category,omitempty"`
	ActivityType string  `json:"activity_type"`
	IsReflection bool    `json:"is_reflection"`

	Scenario string `json:"scenario"`

	ResearchConcept           *string `json:"research_concept,omitempty"`
	ResearchKeyInsight        *string `json:"research_key_insight,omitempty"`
	ResearchCitation          *string `json:"research_citation,omitempty"`
	ResearchAdditionalContext *string `json:"research_additional_context,omitempty"`

	BestApproach      *string  `json:"best_approach,omitempty"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`

	Prompts            []Prompt           `json:"prompts"`
	ActionableTakeaway ActionableTakeaway `json:"actionable_takeaway"`
}

// ActionableTakeaway is the concrete tool or strategy the activity teaches
type ActionableTakeaway struct {
	ToolName   string          `json:"toolName"`
	ToolType   *string         `json:"toolType,omitempty"`
	WhenToUse  string          `json:"whenToUse"`
	HowTo      []string        `json:"howTo"`
	WhyItWorks string          `json:"whyItWorks"`
	TryItWhen  *string         `json:"tryItWhen,omitempty"`
	Example    TakeawayExample `json:"example"`
}

// TakeawayExample is a worked real-world example of the takeaway tool
type TakeawayExample struct {
	Situation string `json:"situation"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
}
