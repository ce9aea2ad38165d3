package llm

// BuildResumeJSONSchema returns the resume schema (JSON-Schema draft 2020-12
// subset) as a generic map. It is embedded in the parse prompt and used
// locally to validate every model response before the result is accepted.
func BuildResumeJSONSchema() map[string]any {
	location := objectOf(map[string]any{
		"city":         strProp(),
		"region":       strProp(),
		"country":      strProp(),
		"country_code": strProp(),
		"postal_code":  strProp(),
		"address":      strProp(),
	}, nil)

	profileURL := objectOf(map[string]any{
		"type": map[string]any{
			"type": "string",
			"enum": []string{"website", "linkedin", "github", "portfolio", "blog", "twitter", "other"},
		},
		"url":   map[string]any{"type": "string", "minLength": 1},
		"label": strProp(),
	}, []string{"url"})

	personalInfo := objectOf(map[string]any{
		"name":          map[string]any{"type": "string", "minLength": 1},
		"label":         strProp(),
		"email":         strProp(),
		"phone":         strProp(),
		"location":      location,
		"urls":          arrayOf(profileURL),
		"date_of_birth": strProp(),
	}, []string{"name"})

	experience := objectOf(map[string]any{
		"type": map[string]any{
			"type": "string",
			"enum": []string{"full-time", "part-time", "contract", "freelance", "internship", "volunteer", "apprenticeship", "self-employed", "other"},
		},
		"company":     map[string]any{"type": "string", "minLength": 1},
		"title":       map[string]any{"type": "string", "minLength": 1},
		"location":    location,
		"start_date":  map[string]any{"type": "string", "minLength": 1},
		"end_date":    strProp(),
		"current":     map[string]any{"type": "boolean"},
		"description": strProp(),
		"highlights":  arrayOf(strProp()),
	}, []string{"company", "title", "start_date"})

	gpa := objectOf(map[string]any{
		"value": map[string]any{"type": "number"},
		"max":   map[string]any{"type": "number"},
	}, []string{"value", "max"})

	education := objectOf(map[string]any{
		"institution":     map[string]any{"type": "string", "minLength": 1},
		"degree":          strProp(),
		"field_of_study":  strProp(),
		"location":        location,
		"start_date":      strProp(),
		"graduation_date": strProp(),
		"gpa":             gpa,
		"honors":          strProp(),
		"courses":         arrayOf(strProp()),
	}, []string{"institution"})

	skill := objectOf(map[string]any{
		"skill":    map[string]any{"type": "string", "minLength": 1},
		"category": strProp(),
		"skill_type": map[string]any{
			"type": "string",
			"enum": []string{"hard", "soft"},
		},
		"proficiency": map[string]any{
			"type": "string",
			"enum": []string{"basic", "intermediate", "advanced", "expert"},
		},
		"years_experience": map[string]any{"type": "number", "minimum": 0},
		"last_used":        strProp(),
	}, []string{"skill"})

	certification := objectOf(map[string]any{
		"name":            map[string]any{"type": "string", "minLength": 1},
		"issuer":          strProp(),
		"date":            strProp(),
		"expiration_date": strProp(),
		"credential_id":   strProp(),
		"url":             strProp(),
	}, []string{"name"})

	language := objectOf(map[string]any{
		"language": map[string]any{"type": "string", "minLength": 1},
		"proficiency": map[string]any{
			"type": "string",
			"enum": []string{"elementary", "limited-working", "professional-working", "full-professional", "native"},
		},
		"fluency": map[string]any{
			"type": "string",
			"enum": []string{"basic", "conversational", "fluent", "native"},
		},
	}, []string{"language"})

	project := objectOf(map[string]any{
		"name":         map[string]any{"type": "string", "minLength": 1},
		"description":  strProp(),
		"role":         strProp(),
		"url":          strProp(),
		"start_date":   strProp(),
		"end_date":     strProp(),
		"technologies": arrayOf(strProp()),
		"highlights":   arrayOf(strProp()),
	}, []string{"name"})

	award := objectOf(map[string]any{
		"title":       map[string]any{"type": "string", "minLength": 1},
		"awarder":     strProp(),
		"date":        strProp(),
		"description": strProp(),
	}, []string{"title"})

	publication := objectOf(map[string]any{
		"title":            map[string]any{"type": "string", "minLength": 1},
		"publisher":        strProp(),
		"publication_date": strProp(),
		"url":              strProp(),
		"authors":          arrayOf(strProp()),
		"description":      strProp(),
	}, []string{"title"})

	reference := objectOf(map[string]any{
		"name":         strProp(),
		"relationship": strProp(),
		"company":      strProp(),
		"email":        strProp(),
		"phone":        strProp(),
	}, nil)

	return objectOf(map[string]any{
		"personal_info":  personalInfo,
		"experience":     arrayOf(experience),
		"education":      arrayOf(education),
		"skills":         arrayOf(skill),
		"certifications": arrayOf(certification),
		"languages":      arrayOf(language),
		"projects":       arrayOf(project),
		"awards":         arrayOf(award),
		"publications":   arrayOf(publication),
		"interests":      arrayOf(strProp()),
		"references":     arrayOf(reference),
	}, []string{"personal_info"})
}

func strProp() map[string]any {
	return map[string]any{"type": "string"}
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func objectOf(props map[string]any, required []string) map[string]any {
	obj := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	if len(required) > 0 {
		obj["required"] = required
	}
	return obj
}
