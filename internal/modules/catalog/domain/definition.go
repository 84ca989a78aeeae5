package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fitlab/internal/platform/category"
)

const SchemaVersion = 1

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

func (d Difficulty) Validate() error {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return nil
	default:
		return fmt.Errorf("unsupported difficulty %q", string(d))
	}
}

// TestDefinition describes one fitness test. Values are never mutated
// after the catalog is loaded.
type TestDefinition struct {
	ID           string
	Name         string
	Description  string
	Category     category.Category
	Instructions []string
	Duration     time.Duration
	Difficulty   Difficulty
}

func (d TestDefinition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("test id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("test %s: name is required", d.ID)
	}
	if d.Duration < 0 {
		return fmt.Errorf("test %s: duration must not be negative", d.ID)
	}
	if err := d.Difficulty.Validate(); err != nil {
		return fmt.Errorf("test %s: %w", d.ID, err)
	}
	return nil
}

func DefaultDefinitions() []TestDefinition {
	return []TestDefinition{
		{
			ID:          "1",
			Name:        "40 Yard Dash",
			Description: "Measure your sprint speed over 40 yards",
			Category:    category.Speed,
			Instructions: []string{
				"Stand at the starting line",
				"Sprint as fast as possible for 40 yards",
				"Record your time",
			},
			Duration:   10 * time.Minute,
			Difficulty: DifficultyIntermediate,
		},
		{
			ID:          "2",
			Name:        "Vertical Jump",
			Description: "Test your explosive leg power",
			Category:    category.Power,
			Instructions: []string{
				"Stand with feet shoulder-width apart",
				"Jump as high as possible",
				"Reach for the highest point",
			},
			Duration:   5 * time.Minute,
			Difficulty: DifficultyBeginner,
		},
		{
			ID:          "3",
			Name:        "Push-ups",
			Description: "Test upper body strength and endurance",
			Category:    category.Strength,
			Instructions: []string{
				"Start in plank position",
				"Lower your body until chest nearly touches floor",
				"Push back up to starting position",
			},
			Duration:   5 * time.Minute,
			Difficulty: DifficultyBeginner,
		},
		{
			ID:          "4",
			Name:        "Plank Hold",
			Description: "Test core strength and stability",
			Category:    category.Core,
			Instructions: []string{
				"Start in plank position",
				"Hold position with straight body",
				"Keep core engaged throughout",
			},
			Duration:   3 * time.Minute,
			Difficulty: DifficultyIntermediate,
		},
		{
			ID:          "5",
			Name:        "Squat Test",
			Description: "Test lower body strength and endurance",
			Category:    category.Strength,
			Instructions: []string{
				"Stand with feet shoulder-width apart",
				"Lower into squat position",
				"Return to standing position",
			},
			Duration:   5 * time.Minute,
			Difficulty: DifficultyBeginner,
		},
		{
			ID:          "6",
			Name:        "Agility Ladder",
			Description: "Test foot speed and coordination",
			Category:    category.Agility,
			Instructions: []string{
				"Set up agility ladder",
				"Perform various footwork patterns",
				"Focus on speed and precision",
			},
			Duration:   10 * time.Minute,
			Difficulty: DifficultyAdvanced,
		},
	}
}

var ErrCatalogExists = errors.New("catalog file already exists")
