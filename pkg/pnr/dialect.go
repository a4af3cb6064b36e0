package pnr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// titlePattern lists the honorifics seen after passenger names. Longest
// alternatives first so MRS is not split into MR + S.
const titlePattern = `MRS|MSTR|MISS|MR|MS|CHD|INF|DR|PROF`

type classifierRule struct {
	lineType LineType
	re       *regexp.Regexp
}

type remarkRule struct {
	kind string
	re   *regexp.Regexp
}

// Ruleset bundles everything that is specific to one GDS display format:
// the line classification markers, the extraction expressions (using named
// capture groups so the extractors stay dialect agnostic) and the
// normalization tables for dates, booking classes and segment status codes.
type Ruleset struct {
	Source GDS

	classifiers []classifierRule

	header         *regexp.Regexp
	headerFallback *regexp.Regexp
	name           *regexp.Regexp
	segment        *regexp.Regexp
	payment        *regexp.Regexp
	card           *regexp.Regexp
	fare           *regexp.Regexp
	fareAmount     *regexp.Regexp
	remark         *regexp.Regexp
	remarkRules    []remarkRule
	ticketing      *regexp.Regexp
	ticketNumber   *regexp.Regexp
	email          *regexp.Regexp
	phone          *regexp.Regexp
	agency         *regexp.Regexp

	dateLayouts []string
	classCodes  map[string]string
	statusCodes map[string]string
}

// RulesetFor returns the extraction rules for the given source system.
func RulesetFor(source GDS) (*Ruleset, error) {
	switch source {
	case GDSAmadeus:
		return amadeusRuleset, nil
	case GDSSabre:
		return sabreRuleset, nil
	case GDSGalileo:
		return galileoRuleset, nil
	default:
		return nil, &UnsupportedGDSError{Source: string(source)}
	}
}

// Classify returns the line type of a raw display line. First matching
// marker wins; lines matching no marker are passed through as unknown.
func (rs *Ruleset) Classify(line string) LineType {
	for _, c := range rs.classifiers {
		if c.re.MatchString(line) {
			return c.lineType
		}
	}
	return LineUnknown
}

// parseDate parses a display date such as 1NOV24 using the dialect layouts.
// The month is re-cased first because the stdlib layouts expect Nov, not NOV.
func (rs *Ruleset) parseDate(s string) (time.Time, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	recased := monthRe.ReplaceAllStringFunc(s, func(m string) string {
		return m[:1] + strings.ToLower(m[1:])
	})
	for _, layout := range rs.dateLayouts {
		if t, err := time.Parse(layout, recased); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalizeTime folds display times into 24-hour HHMM. Sabre renders
// 12-hour times with an A/P suffix; the other systems already use HHMM but
// may drop the leading zero.
func (rs *Ruleset) normalizeTime(t string) string {
	if t == "" {
		return ""
	}
	suffix := byte(0)
	if last := t[len(t)-1]; last == 'A' || last == 'P' {
		suffix = last
		t = t[:len(t)-1]
	}
	for len(t) < 4 {
		t = "0" + t
	}
	if suffix != 0 {
		hh, err := strconv.Atoi(t[:2])
		if err != nil {
			return t
		}
		if suffix == 'P' && hh < 12 {
			hh += 12
		} else if suffix == 'A' && hh == 12 {
			hh = 0
		}
		t = fmt.Sprintf("%02d%s", hh, t[2:])
	}
	return t
}

// normalizeClass folds a booking class token to its canonical letter.
func (rs *Ruleset) normalizeClass(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if mapped, ok := rs.classCodes[c]; ok {
		return mapped
	}
	// Some displays glue the inventory count onto the class letter.
	return strings.TrimRight(c, "0123456789")
}

// normalizeStatus folds dialect action codes into the canonical status set.
func (rs *Ruleset) normalizeStatus(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if mapped, ok := rs.statusCodes[s]; ok {
		return mapped
	}
	return s
}

var (
	monthRe = regexp.MustCompile(`[A-Z]{3}`)

	emailRe = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d ()/-]{6,}\d`)

	// Ticket numbers: 3-digit airline accounting prefix + 10-digit serial,
	// with or without a separator.
	ticketNumberRe = regexp.MustCompile(`\d{3}[ -]?\d{10}`)

	// Recognized fare element: explicit ISO 4217 currency next to an amount.
	fareRe = regexp.MustCompile(`(?P<cur>[A-Z]{3})\s?(?P<amt>\d+(?:\.\d{1,2})?)`)
	// Amount without a currency token. Requires decimals so stray element
	// numbers are never mistaken for fares.
	fareAmountRe = regexp.MustCompile(`(?P<amt>\d+\.\d{1,2})\b`)

	// Remark sub-patterns, checked in order against the remark content.
	commonRemarkRules = []remarkRule{
		{RemarkCostCenter, regexp.MustCompile(`^COST\s*CEN(?:TER|TRE)\s*:?\s*(\S+)`)},
		{RemarkFID, regexp.MustCompile(`^FID\s+([A-Z0-9-]+)`)},
		{RemarkFrequentFlyer, regexp.MustCompile(`^(?:FF|FQTV)[\s:-]*([A-Z0-9-]+)`)},
	}
)

// Amadeus cryptic display. Elements are numbered; the RP header line carries
// both offices, the agent sign, the creation date/time and the locator.
var amadeusRuleset = &Ruleset{
	Source: GDSAmadeus,
	classifiers: []classifierRule{
		{LineHeader, regexp.MustCompile(`^RP/`)},
		// FM/TK are also airline designators, so the markers demand the
		// element shape (FM*M*1A, FM GBP 842.50, TKOK15NOV) rather than the
		// bare code.
		{LineFare, regexp.MustCompile(`^(?:\d+\s+)?F[MV](?:[*\d]|\s+[A-Z]{3}\b|\s+\d+\.\d|\s*$)`)},
		{LinePayment, regexp.MustCompile(`^(?:\d+\s+)?FP\b`)},
		{LineRemark, regexp.MustCompile(`^(?:\d+\s+)?RM\b`)},
		{LineTicketNumber, regexp.MustCompile(`^(?:\d+\s+)?FA\b`)},
		{LineTicketing, regexp.MustCompile(`^(?:\d+\s+)?TK\s*(?:OK|TL|XL|NO|\d{1,2}[A-Z]{3}|$)`)},
		{LineContact, regexp.MustCompile(`^(?:\d+\s+)?AP`)},
		{LineName, regexp.MustCompile(`^\d+\.[A-Z]`)},
		{LineSegment, regexp.MustCompile(`^\d+\s+[A-Z0-9]{2}\s*\d+[A-Z]?\b`)},
	},
	header: regexp.MustCompile(`^RP/(?P<office>[A-Z0-9]+)(?:/(?P<office2>[A-Z0-9]*))?\s+(?:(?P<agent>[A-Z0-9]+)/\S+\s+)?(?P<date>\d{1,2}[A-Z]{3}\d{2})/(?P<time>\d{4}Z?)\s+(?P<pnr>[A-Z0-9]{6})\s*$`),
	headerFallback: regexp.MustCompile(`(?P<pnr>[A-Z0-9]{6})\s*$`),
	name: regexp.MustCompile(`(?P<num>\d+)\.(?P<last>[A-Z][A-Z' -]*?)/(?P<first>[A-Z][A-Z' -]*?)(?:\s+(?P<title>` + titlePattern + `))?(?:\([^)]*\))?(?:\s{2,}|\s*$)`),
	segment: regexp.MustCompile(`^(?P<seq>\d+)\s+(?P<airline>[A-Z0-9]{2})\s*(?P<flight>\d{1,4})(?P<suffix>[A-Z]?)\s+(?P<class>[A-Z])\s+(?P<date>\d{1,2}[A-Z]{3})(?:\s+\d)?\s+(?P<origin>[A-Z]{3})(?P<dest>[A-Z]{3})\s+(?P<status>[A-Z]{2})(?P<count>\d*)\s+(?P<dep>\d{3,4})\s+(?P<arr>\d{3,4})(?:\+(?P<offset>\d))?\s*$`),
	payment: regexp.MustCompile(`^(?:\d+\s+)?FP\s*(?P<fop>.+)$`),
	card:    regexp.MustCompile(`^CC\s?(?P<cardtype>[A-Z]{2})\s?(?P<cardnum>[0-9X*]{8,19})`),
	fare:       fareRe,
	fareAmount: fareAmountRe,
	remark:     regexp.MustCompile(`^(?:\d+\s+)?RM\s?(?P<content>.*)$`),
	remarkRules: commonRemarkRules,
	ticketing: regexp.MustCompile(`^(?:\d+\s+)?TK(?P<status>[A-Z]{2})?\s*(?P<date>\d{1,2}[A-Z]{3})?(?:\d{2})?(?:/(?P<office>[A-Z0-9]+))?`),
	ticketNumber: ticketNumberRe,
	email:        emailRe,
	phone:        phoneRe,
	agency:       regexp.MustCompile(`^(?:\d+\s+)?AP\s+AGY\s+(?P<agency>.+)$`),
	dateLayouts:  []string{"2Jan06", "02Jan06", "2Jan2006"},
	classCodes:   map[string]string{},
	statusCodes:  map[string]string{"RR": StatusConfirmed},
}

// Sabre display. Names carry an occupancy digit (1.1SMITH/JOHN), the booking
// class is glued to the flight number, times are 12-hour with an A/P suffix
// and the locator is echoed on a RECORD LOCATOR line.
var sabreRuleset = &Ruleset{
	Source: GDSSabre,
	classifiers: []classifierRule{
		{LineHeader, regexp.MustCompile(`^\s*(?:\*?RECORD LOCATOR|\*[A-Z0-9]{6}\*?\s*$)`)},
		{LineTicketing, regexp.MustCompile(`^\s*(?:TKT/TIME LIMIT|\d+\.TAW)`)},
		{LineTicketNumber, regexp.MustCompile(`^\s*(?:TE\s|TKT\s)`)},
		{LinePayment, regexp.MustCompile(`^\s*(?:5-\s*)?FOP\b`)},
		{LineFare, regexp.MustCompile(`^\s*(?:TTL|TOTAL|GRAND TOTAL)\b`)},
		{LineName, regexp.MustCompile(`^\s*\d+\.\d+[A-Z]`)},
		{LineContact, regexp.MustCompile(`^\s*\d+\.[A-Z]{3}[\s\d-]`)},
		{LineRemark, regexp.MustCompile(`^\s*5[.-]`)},
		{LineSegment, regexp.MustCompile(`^\s*\d+\s+[A-Z0-9]{2}\s?\d+[A-Z]?\b`)},
	},
	header:         regexp.MustCompile(`(?:RECORD LOCATOR:?\s*|\*)(?P<pnr>[A-Z0-9]{6})`),
	headerFallback: regexp.MustCompile(`^\s*\*?(?P<pnr>[A-Z0-9]{6})\*?\s*$`),
	name: regexp.MustCompile(`(?P<num>\d+)\.\d+(?P<last>[A-Z][A-Z' -]*?)/(?P<first>[A-Z][A-Z' -]*?)(?:\s+(?P<title>` + titlePattern + `))?(?:\([^)]*\))?(?:\s{2,}|\s*$)`),
	segment: regexp.MustCompile(`^\s*(?P<seq>\d+)\s+(?P<airline>[A-Z0-9]{2})\s?(?P<flight>\d{1,4})(?P<class>[A-Z])\s+(?P<date>\d{1,2}[A-Z]{3})\s+(?:[A-Z0-9]\s+)?(?P<origin>[A-Z]{3})(?P<dest>[A-Z]{3})\s*\*?(?P<status>[A-Z]{2})(?P<count>\d*)\s+(?P<dep>\d{3,4}[AP]?)\s+(?P<arr>\d{3,4}[AP]?)(?:\+(?P<offset>\d))?.*$`),
	payment: regexp.MustCompile(`FOP[:\s-]+(?P<fop>.+)$`),
	card:    regexp.MustCompile(`^(?P<cardtype>AX|VI|CA|MC|DC|TP|JC)\s?(?P<cardnum>[0-9X*]{8,19})`),
	fare:       fareRe,
	fareAmount: fareAmountRe,
	remark:     regexp.MustCompile(`^\s*5\.?-?(?:[A-Z]-)?\s*(?P<content>.*)$`),
	remarkRules: commonRemarkRules,
	ticketing: regexp.MustCompile(`(?P<status>TAW|TAX|TKD)(?:/?(?P<office>[A-Z][A-Z0-9]{2,8}))?(?:/?\s*(?P<date>\d{1,2}[A-Z]{3}))?`),
	ticketNumber: ticketNumberRe,
	email:        emailRe,
	phone:        phoneRe,
	dateLayouts:  []string{"2Jan06", "02Jan06", "2Jan2006"},
	classCodes:   map[string]string{},
	statusCodes:  map[string]string{"SS": StatusConfirmed, "GK": StatusConfirmed},
}

// Galileo display. The first line glues the locator to the pseudo city,
// segment numbers carry a trailing dot, remarks use RI./NP. and the
// ticketing arrangement is a TKG line.
var galileoRuleset = &Ruleset{
	Source: GDSGalileo,
	classifiers: []classifierRule{
		{LineHeader, regexp.MustCompile(`^[A-Z0-9]{6}/`)},
		{LinePayment, regexp.MustCompile(`^FOP[:.]?\s`)},
		{LineRemark, regexp.MustCompile(`^(?:RI|NP)\.`)},
		{LineTicketNumber, regexp.MustCompile(`^TKT[:\s]`)},
		{LineTicketing, regexp.MustCompile(`^(?:TKG\b|T\.)`)},
		{LineFare, regexp.MustCompile(`^FQ`)},
		{LineContact, regexp.MustCompile(`^P\.|@`)},
		{LineSegment, regexp.MustCompile(`^\s*\d+\.\s+[A-Z0-9]{2}\s`)},
		{LineName, regexp.MustCompile(`^\d+\.[A-Z]`)},
	},
	header: regexp.MustCompile(`^(?P<pnr>[A-Z0-9]{6})/(?P<office>[A-Z0-9]+)\s*(?:(?P<agent>[A-Z0-9]+)\s+)?(?:AG\s+\d+\s+)?(?P<date>\d{1,2}[A-Z]{3}\d{0,2})?`),
	headerFallback: regexp.MustCompile(`^(?P<pnr>[A-Z0-9]{6})/`),
	name: regexp.MustCompile(`(?P<num>\d+)\.(?P<last>[A-Z][A-Z' -]*?)/(?P<first>[A-Z][A-Z' -]*?)(?:\s+(?P<title>` + titlePattern + `))?(?:\([^)]*\))?(?:\s{2,}|\s*$)`),
	segment: regexp.MustCompile(`^\s*(?P<seq>\d+)\.\s+(?P<airline>[A-Z0-9]{2})\s?(?P<flight>\d{1,4})\s+(?P<class>[A-Z])\s+(?P<date>\d{1,2}[A-Z]{3})\s+(?P<origin>[A-Z]{3})(?P<dest>[A-Z]{3})\s+(?P<status>[A-Z]{2})(?P<count>\d*)\s+(?P<dep>\d{3,4})\s+(?P<arr>\d{3,4})(?:\+(?P<offset>\d))?.*$`),
	payment: regexp.MustCompile(`^FOP[:.]?\s*(?P<fop>.+)$`),
	card:    regexp.MustCompile(`^(?P<cardtype>AX|VI|CA|MC|DC|TP|JC)\s?(?P<cardnum>[0-9X*]{8,19})`),
	fare:       fareRe,
	fareAmount: fareAmountRe,
	remark:     regexp.MustCompile(`^(?:RI|NP)\.\s*(?P<content>.*)$`),
	remarkRules: commonRemarkRules,
	ticketing: regexp.MustCompile(`^(?:TKG|T\.)\s*(?:(?P<status>FAX|TAU|TKD)[\s-]*)?.*?(?P<date>\d{1,2}[A-Z]{3})(?:/(?P<office>[A-Z0-9]+))?`),
	ticketNumber: ticketNumberRe,
	email:        emailRe,
	phone:        phoneRe,
	dateLayouts:  []string{"2Jan06", "02Jan06", "2Jan2006"},
	classCodes:   map[string]string{},
	statusCodes:  map[string]string{"RR": StatusConfirmed, "KK": StatusConfirmed},
}
