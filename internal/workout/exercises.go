package workout

import (
	"github.com/google/uuid"

	"github.com/gymkeyapp/gymkey-server/internal/models"
)

// SetField names a mutable field on a set
type SetField string

const (
	FieldWeight SetField = "weight"
	FieldReps   SetField = "reps"
)

const (
	newExerciseName = "New Exercise"
	newSetCount     = 4
	emptyPrevious   = "- -"
)

// DefaultSession returns the exercise list used when no session document
// exists for a date. Only the first exercise starts expanded.
func DefaultSession() []models.Exercise {
	names := []string{"Squats", "Romanian Deadlifts", "Hip Thrusts", "Walking Lunges"}

	exercises := make([]models.Exercise, len(names))
	for i, name := range names {
		exercises[i] = models.Exercise{
			ID:       uuid.New().String(),
			Name:     name,
			Sets:     emptySets(),
			Expanded: i == 0,
		}
	}

	return exercises
}

func emptySets() []models.Set {
	sets := make([]models.Set, newSetCount)
	for i := range sets {
		sets[i] = models.Set{Previous: emptyPrevious}
	}
	return sets
}

// The transforms below never mutate their input. Only the targeted exercise
// is replaced; every other entry keeps its identity, including the backing
// array of its sets.

func replaceExercise(exercises []models.Exercise, exerciseID string, fn func(models.Exercise) models.Exercise) []models.Exercise {
	for i := range exercises {
		if exercises[i].ID != exerciseID {
			continue
		}

		out := make([]models.Exercise, len(exercises))
		copy(out, exercises)
		out[i] = fn(exercises[i])
		return out
	}

	return exercises
}

// ToggleExpand flips the expanded flag of one exercise
func ToggleExpand(exercises []models.Exercise, exerciseID string) []models.Exercise {
	return replaceExercise(exercises, exerciseID, func(ex models.Exercise) models.Exercise {
		ex.Expanded = !ex.Expanded
		return ex
	})
}

// ToggleComplete flips the completed flag of one exercise
func ToggleComplete(exercises []models.Exercise, exerciseID string) []models.Exercise {
	return replaceExercise(exercises, exerciseID, func(ex models.Exercise) models.Exercise {
		ex.Completed = !ex.Completed
		return ex
	})
}

// Rename sets the name of one exercise
func Rename(exercises []models.Exercise, exerciseID, name string) []models.Exercise {
	return replaceExercise(exercises, exerciseID, func(ex models.Exercise) models.Exercise {
		ex.Name = name
		return ex
	})
}

// UpdateSet writes one field of one set. Values are stored as entered;
// non-numeric text is accepted. Out-of-range set indexes leave the list
// unchanged.
func UpdateSet(exercises []models.Exercise, exerciseID string, setIndex int, field SetField, value string) []models.Exercise {
	return replaceExercise(exercises, exerciseID, func(ex models.Exercise) models.Exercise {
		if setIndex < 0 || setIndex >= len(ex.Sets) {
			return ex
		}

		sets := make([]models.Set, len(ex.Sets))
		copy(sets, ex.Sets)

		switch field {
		case FieldWeight:
			sets[setIndex].Weight = value
		case FieldReps:
			sets[setIndex].Reps = value
		}

		ex.Sets = sets
		return ex
	})
}

// AddSet appends an empty set to one exercise
func AddSet(exercises []models.Exercise, exerciseID string) []models.Exercise {
	return replaceExercise(exercises, exerciseID, func(ex models.Exercise) models.Exercise {
		sets := make([]models.Set, len(ex.Sets), len(ex.Sets)+1)
		copy(sets, ex.Sets)
		ex.Sets = append(sets, models.Set{Previous: emptyPrevious})
		return ex
	})
}

// AddExercise appends a fresh collapsed exercise with four empty sets
func AddExercise(exercises []models.Exercise) []models.Exercise {
	out := make([]models.Exercise, len(exercises), len(exercises)+1)
	copy(out, exercises)

	return append(out, models.Exercise{
		ID:   uuid.New().String(),
		Name: newExerciseName,
		Sets: emptySets(),
	})
}
