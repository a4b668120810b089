package service

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"dailycoach/internal/models"
)

// ContentStore writes activity content
type ContentStore interface {
	Count() (int, error)
	Insert(activity *models.Activity) error
}

// SeedStarterContent inserts a day-1 activity for every age band when the
// catalog is empty. Gives a fresh install something to serve before the
// content pipeline has run.
func SeedStarterContent(store ContentStore) error {
	count, err := store.Count()
	if err != nil {
		return fmt.Errorf("failed to check activity catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("Seeding starter activities...")
	for _, band := range []string{models.AgeBand6to9, models.AgeBand10to12, models.AgeBand13to16} {
		activity := starterActivity(band)
		if err := store.Insert(activity); err != nil {
			return fmt.Errorf("failed to seed activity for band %s: %w", band, err)
		}
	}
	log.Println("Starter activities seeded")
	return nil
}

func starterActivity(ageBand string) *models.Activity {
	intp := func(i int) *int { return &i }

	return &models.Activity{
		ID:                uuid.New().String(),
		DayNumber:         1,
		AgeBand:           ageBand,
		ModuleName:        "emotional-regulation",
		ModuleDisplayName: "Emotional Regulation",
		Title:             "The After-School Meltdown",
		SkillFocus:        "co-regulation",
		ActivityType:      "basic-scenario",
		Scenario: "Your child walks in the door after school, drops their bag, " +
			"and bursts into tears over a snack that isn't the one they wanted. " +
			"The reaction feels much bigger than the situation.",
		Prompts: []models.Prompt{
			{
				PromptID:   "p1",
				Type:       models.TypeStateIdentification,
				PromptText: "What is most likely going on for your child right now?",
				Order:      1,
				Points:     10,
				Options: []models.Option{
					{
						OptionID:   "a",
						OptionText: "They are being manipulative to get a different snack",
						Feedback:   "Big after-school reactions are usually about a full emotional tank, not the snack itself.",
					},
					{
						OptionID:   "b",
						OptionText: "They held it together all day and are releasing stored-up stress",
						Correct:    true,
						Feedback:   "Exactly. This is often called after-school restraint collapse. Home is where they feel safe enough to fall apart.",
					},
					{
						OptionID:   "c",
						OptionText: "They are overtired and need to go straight to bed",
						Feedback:   "Tiredness can play a part, but the pattern here points to releasing a full day of held-in feelings.",
					},
				},
			},
			{
				PromptID:   "p2",
				Type:       models.TypeSelectAll,
				PromptText: "Which responses help your child settle? Select all that apply.",
				Order:      2,
				Points:     10,
				Config:     &models.PromptConfig{MinCorrect: intp(2)},
				Options: []models.Option{
					{
						OptionID:   "a",
						OptionText: "Stay calm and keep your own voice low",
						Correct:    true,
						Feedback:   "Your calm is contagious. A regulated adult helps a dysregulated child settle.",
					},
					{
						OptionID:   "b",
						OptionText: "Explain why crying over a snack is unreasonable",
						Feedback:   "Logic lands poorly mid-meltdown. The thinking brain is offline until the feelings settle.",
					},
					{
						OptionID:   "c",
						OptionText: "Offer closeness without demanding they stop crying",
						Correct:    true,
						Feedback:   "Presence without pressure tells them the feeling is safe to have around you.",
					},
					{
						OptionID:   "d",
						OptionText: "Send them to their room until they calm down",
						Feedback:   "Isolation can read as rejection right when they most need connection.",
					},
				},
			},
			{
				PromptID:   "p3",
				Type:       models.TypeReflection,
				PromptText: "Think about the last time your child fell apart after school. What did they most need from you in that moment?",
				Order:      3,
				Points:     5,
			},
		},
		ActionableTakeaway: models.ActionableTakeaway{
			ToolName:   "Connect Before You Correct",
			WhenToUse:  "When your child's reaction seems far bigger than the trigger",
			HowTo: []string{
				"Get low and close instead of talking from across the room",
				"Name what you see: \"That was a hard day, huh?\"",
				"Wait for their body to settle before solving the snack problem",
			},
			WhyItWorks: "Connection calms the nervous system first, which is what makes correction or problem-solving possible at all.",
			Example: models.TakeawayExample{
				Situation: "Your child melts down because their sandwich was cut the wrong way.",
				Action:    "You sit nearby, keep your voice soft, and say \"You really wanted it in triangles.\"",
				Outcome:   "The crying slows within a couple of minutes and they accept the sandwich, or a redo, without a battle.",
			},
		},
	}
}
