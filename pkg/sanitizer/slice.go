package sanitizer

// SanitizeSlice applies normalizer to every item and drops empties and duplicates,
// keeping first-seen order.
func SanitizeSlice(items []string, normalizer func(string) string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	return result
}

func NormalizeAmenities(amenities []string) []string {
	return SanitizeSlice(amenities, NormalizeAmenity)
}
