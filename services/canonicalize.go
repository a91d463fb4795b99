package services

import (
	"regexp"
	"sort"
	"strings"
)

var (
	commaSpaceRE  = regexp.MustCompile(`,\s+`)
	tabRunRE      = regexp.MustCompile(`\t+`)
	andRE         = regexp.MustCompile(`\s+and\s+`)
	orRE          = regexp.MustCompile(`\s+or\s+`)
	romanTypeRE   = regexp.MustCompile(`type ([xvi]+)$`)
	numberTypeRE  = regexp.MustCompile(`\s+type\s+[0-9]+[a-z]?$`)
	typeWordRE    = regexp.MustCompile(`\s+type\s+`)
	parenRE       = regexp.MustCompile(`\(|\)`)
	whitespaceRE  = regexp.MustCompile(`\s+`)
	curlyQuoteDel = strings.NewReplacer("“", "", "”", "")
)

// trailingRE strips inheritance words left dangling at the end of a name.
var trailingRE = []*regexp.Regexp{
	regexp.MustCompile(`biallelic$`),
	regexp.MustCompile(`autosomal$`),
	regexp.MustCompile(`\(biallelic\)$`),
	regexp.MustCompile(`\(autosomal\)$`),
}

// romanNumerals is deliberately partial; other numerals are left as they are.
var romanNumerals = map[string]string{
	"i":    "1",
	"ii":   "2",
	"iii":  "3",
	"iv":   "4",
	"v":    "5",
	"vi":   "6",
	"vii":  "7",
	"viii": "8",
	"ix":   "9",
	"xvii": "17",
}

// Canonicalize reduces a disease name to a lowercase, token-sorted form used to
// detect duplicates. Names that share every token compare equal.
func Canonicalize(name string) string {
	s := strings.TrimSpace(name)
	s = strings.TrimLeft(s, "?")
	s = strings.TrimRight(s, ".")
	s = commaSpaceRE.ReplaceAllString(s, " ")
	s = curlyQuoteDel.Replace(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = tabRunRE.ReplaceAllString(s, " ")

	s = strings.ToLower(s)

	s = andRE.ReplaceAllString(s, " ")
	s = orRE.ReplaceAllString(s, " ")

	for _, re := range trailingRE {
		s = re.ReplaceAllString(s, "")
	}

	s = romanTypeRE.ReplaceAllStringFunc(s, func(m string) string {
		numeral := romanTypeRE.FindStringSubmatch(m)[1]
		if arabic, ok := romanNumerals[numeral]; ok {
			return "type " + arabic
		}
		return m
	})

	if numberTypeRE.MatchString(s) {
		s = typeWordRE.ReplaceAllString(s, " ")
	}

	s = parenRE.ReplaceAllString(s, " ")
	s = whitespaceRE.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
