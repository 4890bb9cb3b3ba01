package validator

import "time"

// Gender as encoded in the PESEL gender digit.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

var peselWeights = [10]int{1, 3, 7, 9, 1, 3, 7, 9, 1, 3}

// PESEL reports whether the national identifier is internally consistent and
// agrees with the supplied birth date and gender. The identifier encodes the
// birth date in its first six digits (month offset selects the century) and
// the gender in the parity of the tenth digit; the eleventh is a weighted
// checksum over the first ten.
func PESEL(pesel string, birthDate time.Time, gender Gender) bool {
	if len(pesel) != 11 {
		return false
	}
	digits := make([]int, 11)
	for i, r := range pesel {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}

	sum := 0
	for i, w := range peselWeights {
		sum += digits[i] * w
	}
	if (10-sum%10)%10 != digits[10] {
		return false
	}

	year := digits[0]*10 + digits[1]
	month := digits[2]*10 + digits[3]
	day := digits[4]*10 + digits[5]

	var century int
	switch {
	case month >= 1 && month <= 12:
		century = 1900
	case month >= 21 && month <= 32:
		century = 2000
		month -= 20
	case month >= 41 && month <= 52:
		century = 2100
		month -= 40
	case month >= 61 && month <= 72:
		century = 2200
		month -= 60
	case month >= 81 && month <= 92:
		century = 1800
		month -= 80
	default:
		return false
	}

	if birthDate.Year() != century+year ||
		int(birthDate.Month()) != month ||
		birthDate.Day() != day {
		return false
	}

	male := digits[9]%2 == 1
	switch gender {
	case GenderMale:
		return male
	case GenderFemale:
		return !male
	default:
		return false
	}
}
