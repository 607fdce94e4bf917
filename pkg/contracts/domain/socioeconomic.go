package domain

// IndexKind identifies one of the published socioeconomic rankings.
type IndexKind string

const (
	IndexEconomicFreedom      IndexKind = "economic_freedom"
	IndexCorruptionPerception IndexKind = "corruption_perception"
	IndexHumanDevelopment     IndexKind = "human_development"
	IndexWorldCompetitiveness IndexKind = "world_competitiveness"
)

// Known reports whether k names one of the published rankings.
func (k IndexKind) Known() bool {
	switch k {
	case IndexEconomicFreedom, IndexCorruptionPerception,
		IndexHumanDevelopment, IndexWorldCompetitiveness:
		return true
	}
	return false
}

// IndexScore is one country's score and rank in a socioeconomic index.
type IndexScore struct {
	Index       IndexKind `json:"index" db:"index_kind" validate:"required"`
	Year        string    `json:"year,omitempty" db:"year" validate:"omitempty,len=4"`
	CountryCode string    `json:"country_code" db:"country_code" validate:"required"`
	CountryName string    `json:"country_name" db:"country_name"`
	Score       float64   `json:"score" db:"score"`
	Rank        int       `json:"rank" db:"rank" validate:"min=1"`
}
