package domain

import "strings"

var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// ValidateNIP checks a Polish tax identification number. Spaces and hyphens
// are ignored; the cleaned value must be ten digits whose weighted checksum
// matches the final digit. A checksum of 10 never occurs in a valid NIP.
func ValidateNIP(value string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, value)

	if len(cleaned) != 10 {
		return false
	}

	var digits [10]int
	for i, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}

	sum := 0
	for i, w := range nipWeights {
		sum += w * digits[i]
	}

	check := sum % 11
	if check == 10 {
		return false
	}

	return check == digits[9]
}
