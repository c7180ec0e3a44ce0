package catalog

type FieldFilter struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Name      string `json:"name"`
	InputType string `json:"inputType"`
	Group     string `json:"group"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

type FilterGroup struct {
	Filters   []FieldFilter `json:"filters"`
	ID        string        `json:"id"`
	Condition string        `json:"condition"`
}

// FilterDocument is the body of a programs search request.
type FilterDocument struct {
	Condition string        `json:"condition"`
	Filters   []FilterGroup `json:"filters"`
}

const (
	programGroupLiteral    = "program"
	fieldConditionLiteral  = "field"
	selectInputLiteral     = "select"
	textInputLiteral       = "text"
	isNotLiteral           = "isNot"
	containsLiteral        = "contains"
	levelFilterID          = "level-program"
	designationFilterID    = "degreeDesignation-program"
	codeFilterID           = "code-program"
	displayNameFilterID    = "catalogDisplayName-program"
	undergraduateGroupID   = "kFsSkKHp"
	excludedProgramCode    = "322619"
	displayNameMustContain = "("
)

func excludeField(filterID string, fieldName string, inputType string, value string) FieldFilter {
	return FieldFilter{
		ID:        filterID,
		Condition: fieldConditionLiteral,
		Name:      fieldName,
		InputType: inputType,
		Group:     programGroupLiteral,
		Type:      isNotLiteral,
		Value:     value,
	}
}

// UndergraduateProgramsFilter drops graduate, doctoral, non-degree and
// pre-major programs and keeps only entries with a degree suffix in parentheses.
func UndergraduateProgramsFilter() FilterDocument {
	return FilterDocument{
		Condition: "AND",
		Filters: []FilterGroup{{
			ID:        undergraduateGroupID,
			Condition: "and",
			Filters: []FieldFilter{
				excludeField(levelFilterID, "level", selectInputLiteral, "Doctoral"),
				excludeField(levelFilterID, "level", selectInputLiteral, "Graduate Minor"),
				excludeField(levelFilterID, "level", selectInputLiteral, "Masters"),
				excludeField(designationFilterID, "degreeDesignation", selectInputLiteral, "PBS"),
				excludeField(codeFilterID, "code", textInputLiteral, excludedProgramCode),
				excludeField(designationFilterID, "degreeDesignation", selectInputLiteral, "PRE"),
				excludeField(levelFilterID, "level", selectInputLiteral, "Non Degree"),
				{
					ID:        displayNameFilterID,
					Condition: fieldConditionLiteral,
					Name:      "catalogDisplayName",
					InputType: textInputLiteral,
					Group:     programGroupLiteral,
					Type:      containsLiteral,
					Value:     displayNameMustContain,
				},
			},
		}},
	}
}
