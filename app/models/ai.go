// Package models also carries the structured shapes returned by the AI facade.
package models

type GradeLevel string

const (
	GradeElementary GradeLevel = "elementary"
	GradeHighSchool GradeLevel = "high school"
	GradeCollege    GradeLevel = "college"
	GradeGraduate   GradeLevel = "graduate"
)

type Difficulty string

const (
	DifficultySimple   Difficulty = "simple"
	DifficultyDetailed Difficulty = "detailed"
	DifficultyAdvanced Difficulty = "advanced"
)

type AssignmentHelp struct {
	Explanation string   `json:"explanation"`
	Steps       []string `json:"steps"`
	Example     string   `json:"example"`
}

type OutlineChapter struct {
	Chapter     string `json:"chapter"`
	Description string `json:"description"`
}

type ResearchAssistance struct {
	Titles      []string         `json:"titles"`
	Questions   []string         `json:"questions"`
	Outline     []OutlineChapter `json:"outline"`
	Methodology string           `json:"methodology"`
}
