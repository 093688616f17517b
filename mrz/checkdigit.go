package mrz

import "fmt"

// ErrUnknownCharacter is returned by CheckDigit when a character outside
// the check-digit alphabet (<, 0-9, A-Z) is encountered.
type ErrUnknownCharacter struct {
	C byte
}

func (e ErrUnknownCharacter) Error() string {
	return fmt.Sprintf("mrz: character %q is outside the check-digit alphabet", e.C)
}

// checkDigitAlphabet maps each byte value to its check-digit value, or -1
// if the byte is not part of the alphabet. A small constant lookup table,
// built once at init — following the teacher's dictionaries package
// convention (e.g. dictionaries/mcc_mnc.go's constant lookup maps) rather
// than a branch cascade over character ranges.
var checkDigitAlphabet [256]int

func init() {
	for i := range checkDigitAlphabet {
		checkDigitAlphabet[i] = -1
	}
	checkDigitAlphabet['<'] = 0
	for d := byte('0'); d <= '9'; d++ {
		checkDigitAlphabet[d] = int(d - '0')
	}
	for l := byte('A'); l <= 'Z'; l++ {
		checkDigitAlphabet[l] = 10 + int(l-'A')
	}
}

// checkDigitWeights cycles [7, 3, 1] across the characters of the string.
var checkDigitWeights = [3]int{7, 3, 1}

// CheckDigit computes the ICAO 9303 check digit for s: each character's
// alphabet value is multiplied by the cyclically-repeating weight [7, 3,
// 1] and the products are summed modulo 10. This is the single mechanism
// used both to validate MRZ fields and, later, to derive BAC keys from
// document number, date of birth, and date of expiry.
func CheckDigit(s string) (int, error) {
	sum := 0
	for i := 0; i < len(s); i++ {
		v := checkDigitAlphabet[s[i]]
		if v < 0 {
			return 0, ErrUnknownCharacter{C: s[i]}
		}
		sum += v * checkDigitWeights[i%3]
	}
	return sum % 10, nil
}
