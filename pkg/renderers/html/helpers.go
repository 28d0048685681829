package html

import "strings"

func fieldControlID(formType, key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	return "fd-" + strings.ToLower(formType) + "-" + trimmed
}

func fieldLabelID(formType, key string) string {
	controlID := fieldControlID(formType, key)
	if controlID == "" {
		return ""
	}
	return controlID + "-label"
}

// sanitizeClassList drops reserved formdoc- tokens so overrides only add
// classes.
func sanitizeClassList(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "formdoc-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

// cssValue keeps theme values from closing the surrounding style element.
func cssValue(value string) string {
	return strings.NewReplacer("<", "", ">", "", "{", "", "}", "", ";", "").Replace(strings.TrimSpace(value))
}
