package mrz

import (
	"strings"
)

// ParseMRZ parses MRZ text into a Record. Input is split on '\n';
// surrounding whitespace is trimmed from every line and blank lines are
// dropped. The format (TD1/TD2/TD3) is chosen exclusively by the
// resulting (line count, line width) shape. Every check digit embedded in
// the MRZ is validated; any mismatch returns ErrBadCheckDigit and no
// record.
func ParseMRZ(s string) (Record, error) {
	lines := splitNonBlankLines(s)

	switch {
	case len(lines) == 2 && len(lines[0]) == 44 && len(lines[1]) == 44:
		return parseTD3(lines[0], lines[1])
	case len(lines) == 3 && len(lines[0]) == 30 && len(lines[1]) == 30 && len(lines[2]) == 30:
		return parseTD1(lines[0], lines[1], lines[2])
	case len(lines) == 2 && len(lines[0]) == 36 && len(lines[1]) == 36:
		return parseTD2(lines[0], lines[1])
	default:
		widths := make([]int, len(lines))
		for i, l := range lines {
			widths[i] = len(l)
		}
		return Record{}, ErrUnknownFormat{LineCount: len(lines), Widths: widths}
	}
}

func splitNonBlankLines(s string) []string {
	raw := strings.Split(s, "\n")
	var lines []string
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// digitValue parses a single check-digit character through the
// check-digit alphabet, used both for reading embedded check digits and
// for the alphabet-validity requirement on every character that
// participates in a check-digit computation.
func digitValue(b byte) (int, error) {
	v := checkDigitAlphabet[b]
	if v < 0 {
		return 0, ErrUnknownCharacter{C: b}
	}
	return v, nil
}

func verifyCheckDigit(which, input string, readChar byte) error {
	read, err := digitValue(readChar)
	if err != nil {
		return err
	}
	computed, err := CheckDigit(input)
	if err != nil {
		return err
	}
	if read != computed {
		return ErrBadCheckDigit{Which: which, Read: read, Computed: computed}
	}
	return nil
}

// splitName implements the shared name-field splitting rule used by all
// three formats: split on the first "<<"; trim trailing filler off each
// half; detect truncation from the untrimmed field.
func splitName(raw string) (primary string, secondary *string, truncated bool) {
	truncated = len(raw) > 0 && raw[len(raw)-1] != '<'

	idx := strings.Index(raw, "<<")
	if idx < 0 {
		return strings.TrimRight(raw, "<"), nil, truncated
	}
	primary = strings.TrimRight(raw[:idx], "<")
	sec := strings.TrimRight(raw[idx+2:], "<")
	return primary, &sec, truncated
}

// extendedDocumentNumber implements the shared TD1/TD2 overlong
// document-number rule. docNumField is the fixed 9-character field;
// checkPos is the single byte immediately following it; optionalRegion is
// the raw (untrimmed) optional-data-1 column range.
//
// Returns the full document number, the raw input whose check digit must
// match readDigit, readDigit itself, and the resulting optional-data-1
// (already right-trimmed).
func extendedDocumentNumber(docNumField string, checkPos byte, optionalRegion string) (docNumber, checkInput string, readDigit byte, optionalData1 string) {
	if checkPos != '<' {
		return docNumField, docNumField, checkPos, strings.TrimRight(optionalRegion, "<")
	}

	idx := strings.IndexByte(optionalRegion, '<')
	var extension string
	var trueCheck byte
	var rest string
	if idx < 0 {
		// No terminating filler: extend to the penultimate column: the
		// final column is the check digit.
		extension = optionalRegion[:len(optionalRegion)-1]
		trueCheck = optionalRegion[len(optionalRegion)-1]
		rest = ""
	} else if idx == 0 {
		extension = ""
		trueCheck = checkPos
		rest = optionalRegion[idx+1:]
	} else {
		extension = optionalRegion[:idx-1]
		trueCheck = optionalRegion[idx-1]
		rest = optionalRegion[idx+1:]
	}

	docNumber = docNumField + extension
	return docNumber, docNumber, trueCheck, strings.TrimRight(rest, "<")
}

func parseTD3(top, bottom string) (Record, error) {
	docType := strings.TrimRight(top[0:2], "<")
	issuer := strings.TrimRight(top[2:5], "<")
	primary, secondary, truncated := splitName(top[5:44])

	docNumber := bottom[0:9]
	docNumberCheck := bottom[9]
	nationality := strings.TrimRight(bottom[10:13], "<")
	dob := bottom[13:19]
	dobCheck := bottom[19]
	sex := string(bottom[20])
	expiry := bottom[21:27]
	expiryCheck := bottom[27]
	optional1Raw := bottom[28:42]
	optional1Check := bottom[42]
	compositeCheck := bottom[43]

	if err := verifyCheckDigit("document_number", docNumber, docNumberCheck); err != nil {
		return Record{}, err
	}
	if err := verifyCheckDigit("date_of_birth", dob, dobCheck); err != nil {
		return Record{}, err
	}
	if err := verifyCheckDigit("date_of_expiry", expiry, expiryCheck); err != nil {
		return Record{}, err
	}
	if optional1Check != '<' {
		if err := verifyCheckDigit("optional_data_1", optional1Raw, optional1Check); err != nil {
			return Record{}, err
		}
	}
	composite := bottom[0:10] + bottom[13:20] + bottom[21:43]
	if err := verifyCheckDigit("composite", composite, compositeCheck); err != nil {
		return Record{}, err
	}

	return Record{
		DocumentType:         docType,
		Issuer:               issuer,
		PrimaryIdentifier:    primary,
		SecondaryIdentifier:  secondary,
		NameMightBeTruncated: truncated,
		DocumentNumber:       docNumber,
		HolderNationality:    nationality,
		DateOfBirth:          dob,
		Sex:                  sex,
		DateOfExpiry:         expiry,
		OptionalData1:        strings.TrimRight(optional1Raw, "<"),
		OptionalData2:        nil,
	}, nil
}

func parseTD1(top, middle, name string) (Record, error) {
	docType := strings.TrimRight(top[0:2], "<")
	issuer := strings.TrimRight(top[2:5], "<")
	docNumField := top[5:14]
	docNumCheckPos := top[14]
	optional1Region := top[15:30]

	dob := middle[0:6]
	dobCheck := middle[6]
	sex := string(middle[7])
	expiry := middle[8:14]
	expiryCheck := middle[14]
	nationality := strings.TrimRight(middle[15:18], "<")
	optional2Raw := middle[18:29]
	compositeCheck := middle[29]

	primary, secondary, truncated := splitName(name)

	docNumber, docCheckInput, docReadCheck, optionalData1 := extendedDocumentNumber(docNumField, docNumCheckPos, optional1Region)

	if err := verifyCheckDigit("document_number", docCheckInput, docReadCheck); err != nil {
		return Record{}, err
	}
	if err := verifyCheckDigit("date_of_birth", dob, dobCheck); err != nil {
		return Record{}, err
	}
	if err := verifyCheckDigit("date_of_expiry", expiry, expiryCheck); err != nil {
		return Record{}, err
	}
	composite := top[5:30] + middle[0:7] + middle[8:15] + middle[18:29]
	if err := verifyCheckDigit("composite", composite, compositeCheck); err != nil {
		return Record{}, err
	}

	optional2 := strings.TrimRight(optional2Raw, "<")

	return Record{
		DocumentType:         docType,
		Issuer:               issuer,
		PrimaryIdentifier:    primary,
		SecondaryIdentifier:  secondary,
		NameMightBeTruncated: truncated,
		DocumentNumber:       docNumber,
		HolderNationality:    nationality,
		DateOfBirth:          dob,
		Sex:                  sex,
		DateOfExpiry:         expiry,
		OptionalData1:        optionalData1,
		OptionalData2:        &optional2,
	}, nil
}

func parseTD2(top, bottom string) (Record, error) {
	docType := strings.TrimRight(top[0:2], "<")
	issuer := strings.TrimRight(top[2:5], "<")
	primary, secondary, truncated := splitName(top[5:36])

	docNumField := bottom[0:9]
	docNumCheckPos := bottom[9]
	nationality := strings.TrimRight(bottom[10:13], "<")
	dob := bottom[13:19]
	dobCheck := bottom[19]
	sex := string(bottom[20])
	expiry := bottom[21:27]
	expiryCheck := bottom[27]
	optional1Region := bottom[28:35]
	compositeCheck := bottom[35]

	docNumber, docCheckInput, docReadCheck, optionalData1 := extendedDocumentNumber(docNumField, docNumCheckPos, optional1Region)

	if err := verifyCheckDigit("document_number", docCheckInput, docReadCheck); err != nil {
		return Record{}, err
	}
	if err := verifyCheckDigit("date_of_birth", dob, dobCheck); err != nil {
		return Record{}, err
	}
	if err := verifyCheckDigit("date_of_expiry", expiry, expiryCheck); err != nil {
		return Record{}, err
	}
	composite := bottom[0:10] + bottom[13:20] + bottom[21:35]
	if err := verifyCheckDigit("composite", composite, compositeCheck); err != nil {
		return Record{}, err
	}

	return Record{
		DocumentType:         docType,
		Issuer:               issuer,
		PrimaryIdentifier:    primary,
		SecondaryIdentifier:  secondary,
		NameMightBeTruncated: truncated,
		DocumentNumber:       docNumber,
		HolderNationality:    nationality,
		DateOfBirth:          dob,
		Sex:                  sex,
		DateOfExpiry:         expiry,
		OptionalData1:        optionalData1,
		OptionalData2:        nil,
	}, nil
}
