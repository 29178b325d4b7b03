package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anudeep227/personal-health-manager/internal/entity"
)

var (
	reLabValue = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_]*)[:\s]+([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z/%]+)?`)
	reRefRange = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*-\s*([0-9]+(?:\.[0-9]+)?)`)
	reLabUnit  = regexp.MustCompile(`(?i)^(mg/dl|mmol/l|g/dl|g/l|iu/l|u/l|meq/l|ng/ml|pg/ml|miu/l|k/ul|m/ul|fl|pg|%|mg|mcg|g|dl|ml|l|mmhg|bpm|ms)$`)
)

// words that precede numbers in headers and metadata, not test results
var labNameStopList = map[string]struct{}{
	"date": {}, "dob": {}, "time": {}, "page": {}, "tel": {}, "phone": {},
	"fax": {}, "id": {}, "mrn": {}, "age": {}, "room": {}, "visit": {},
}

// extractLab scans line by line for "<test>: <value> <unit>" entries. A value
// is flagged abnormal only when the line states an explicit reference range;
// without one the flag stays unset.
func extractLab(text string) entity.StructuredFields {
	var f entity.StructuredFields
	for _, line := range strings.Split(text, "\n") {
		matches := reLabValue.FindAllStringSubmatchIndex(line, -1)
		for i, m := range matches {
			name := line[m[2]:m[3]]
			if _, skip := labNameStopList[strings.ToLower(name)]; skip {
				continue
			}
			value, err := strconv.ParseFloat(line[m[4]:m[5]], 64)
			if err != nil {
				continue
			}

			lv := entity.LabValue{Test: name, Value: value}
			if m[6] >= 0 {
				if unit := line[m[6]:m[7]]; reLabUnit.MatchString(unit) {
					lv.Unit = unit
				}
			}

			// reference range, if stated, sits between this value and the
			// next entry on the line
			rest := line[m[1]:]
			if i+1 < len(matches) {
				rest = line[m[1]:matches[i+1][0]]
			}
			if r := reRefRange.FindStringSubmatch(rest); r != nil {
				low, errLo := strconv.ParseFloat(r[1], 64)
				high, errHi := strconv.ParseFloat(r[2], 64)
				if errLo == nil && errHi == nil && low <= high {
					abnormal := value < low || value > high
					lv.RefLow = &low
					lv.RefHigh = &high
					lv.Abnormal = &abnormal
				}
			}

			f.LabValues = append(f.LabValues, lv)
		}
	}
	return f
}
