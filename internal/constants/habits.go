package constants

const (
	// Habit categories offered by the forms. Category is free text in storage.
	CategoryHealth       = "health"
	CategoryProductivity = "productivity"
	CategoryMindfulness  = "mindfulness"
	DefaultCategory      = CategoryHealth

	// Daily entry score bounds and the defaults used when an entry is
	// created implicitly by logging a habit.
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5
)

// Categories lists the categories in display order.
var Categories = []string{CategoryHealth, CategoryProductivity, CategoryMindfulness}
