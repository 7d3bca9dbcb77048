package fitment

import "regexp"

var ownershipFraming = regexp.MustCompile(`(?i)\b(?:my|new|another|different|other|second|switched\s+to|traded\s+(?:it\s+)?(?:in\s+)?for)\b(?:\s+\S+){0,4}?\s+(?:truck|pickup|vehicle|car|suv|ride|rig)\b`)

// IsVehicleChange reports whether text reads like the user is describing a
// vehicle from scratch: a year or make inside "my/new/another truck" framing,
// or a make and a year mentioned together.
func IsVehicleChange(text string) bool {
	hasYear := ExtractYear(text) != ""
	hasMake := ExtractMake(text) != ""
	if hasYear && hasMake {
		return true
	}
	return (hasYear || hasMake) && ownershipFraming.MatchString(text)
}
