package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is a single text transform of the cleaning pipeline.
type Rule func(text string) string

var (
	bodyStartRe = regexp.MustCompile(`(?i)abstract|abstrak|introduction|pendahuluan`)

	journalMetadataLineRes = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^.*(?:Majalah|Journal|Jurnal|ISSN|Vol\.|Volume).*$`),
		regexp.MustCompile(`(?m)^.*(?:Traditional|Medicine|Obat|Tradisional).*ISSN.*$`),
		regexp.MustCompile(`(?mi)^.*[pe]-ISSN.*$`),
	}

	citationLineRes = []*regexp.Regexp{
		// Jurnal Farmasi 12(2): 45-50, 2019 47
		regexp.MustCompile(`(?m)^.*\d+[ \t]*\(\d+\).*\b(?:19|20)\d{2}\b.*[ \t]\d{1,4}[ \t]*$`),
		// Pharmacognosy Journal 11(3): 120-125
		regexp.MustCompile(`(?m)^[ \t]*[A-Z][A-Za-z.&' ]+[ \t]+\d+[ \t]*\(\d+\)[ \t]*[:,]?[ \t]*\d+(?:[ \t]*[-–][ \t]*\d+)?[ \t]*$`),
	}

	inlineNoiseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:https?://(?:dx\.)?doi\.org/|\bdoi:?[ \t]*)10\.\d{4,9}/\S+`),
		regexp.MustCompile(`\b10\.\d{4,9}/\S+`),
		regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`),
		regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		regexp.MustCompile(`(?i)\b(?:[pe]-)?ISSN[ \t]*:?[ \t]*\d{4}-?\d{3}[\dX]`),
	}

	pageNumberLineRes = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`),
		regexp.MustCompile(`(?m)^[ \t]*-[ \t]*\d+[ \t]*-[ \t]*$`),
		regexp.MustCompile(`(?m)^.*\b\d{4}[ \t]+\d{1,4}[ \t]*$`),
	}

	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)

	journalNameLineRe = regexp.MustCompile(`(?:Majalah|Journal|Jurnal).*\d+`)

	conflictRe      = regexp.MustCompile(`(?i)\bconflicts?\s+of\s+interests?\b|\bcompeting\s+interests?\b|\bkonflik\s+kepentingan\b`)
	acknowledgeRe   = regexp.MustCompile(`(?i)\backnowledge?ments?\b|\bucapan\s+terima\s+kasih\b`)
	referencesRe    = regexp.MustCompile(`(?i)\breferences?\b|\bdaftar\s+pustaka\b|\bbibliography\b|\bliteratur\b|\bcitations?\b`)
	contributionsRe = regexp.MustCompile(`(?i)\bauthors?'?\s+contributions?\b|\bkontribusi\s+penulis\b`)
	referenceItemRe = regexp.MustCompile(`(?m)^[ \t]*\d+\.\s+[A-Z]`)

	captionLineRe = regexp.MustCompile(`(?m)^[ \t]*(?:Figure|Fig\.|Table|Tabel|Gambar)[ \t]*\d+[:.].{0,200}$`)
)

const (
	minPatternLength      = 5
	shortLineLength       = 15
	headingFollowerLength = 40
	noiseLineLength       = 3
	minRepeatedLength     = 5
	maxRepeatedLength     = 150
	sectionPositionRatio  = 0.9
	referenceRemainRatio  = 0.4
	referenceLookahead    = 3
)

// CleanAcademicText strips journal branding, page furniture and trailing
// boilerplate sections from text extracted from an academic PDF.
// headerPattern and footerPattern are optional repeating page decorations.
func CleanAcademicText(rawText, headerPattern, footerPattern string) string {
	rules := []Rule{
		TrimToBody,
		func(text string) string { return RemoveHeaderPattern(text, headerPattern) },
		RemoveJournalMetadataLines,
		func(text string) string { return RemoveFooterPattern(text, footerPattern) },
		RemoveCitationLines,
		RemoveInlineNoise,
		RemovePageNumberLines,
		NormalizeWhitespace,
		FilterLines,
		RemoveRepeatedLines,
		TruncateTrailingSections,
		RemoveCaptionLines,
		func(text string) string { return strings.TrimSpace(NormalizeWhitespace(text)) },
	}

	text := rawText
	for _, rule := range rules {
		text = rule(text)
	}
	return text
}

// TrimToBody drops everything before the first abstract or introduction heading.
func TrimToBody(text string) string {
	loc := bodyStartRe.FindStringIndex(text)
	if loc == nil || loc[0] == 0 {
		return text
	}
	return text[loc[0]:]
}

// RemoveHeaderPattern removes the header and every line sharing one of its long words.
func RemoveHeaderPattern(text, pattern string) string {
	pattern = strings.TrimSpace(pattern)
	if utf8.RuneCountInString(pattern) <= minPatternLength {
		return text
	}

	text = removeLiteral(text, pattern)
	for _, word := range strings.Fields(pattern) {
		if utf8.RuneCountInString(word) <= minPatternLength {
			continue
		}
		lineRe := regexp.MustCompile(`(?im)^.*` + regexp.QuoteMeta(word) + `.*$`)
		text = lineRe.ReplaceAllString(text, "")
	}
	return text
}

// RemoveFooterPattern removes every occurrence of the footer.
func RemoveFooterPattern(text, pattern string) string {
	pattern = strings.TrimSpace(pattern)
	if utf8.RuneCountInString(pattern) <= minPatternLength {
		return text
	}
	return removeLiteral(text, pattern)
}

// RemoveJournalMetadataLines removes lines carrying journal names, ISSN or volume information.
func RemoveJournalMetadataLines(text string) string {
	return replaceAll(text, journalMetadataLineRes)
}

// RemoveCitationLines removes running citation lines like "Journal 12(2): 45-50, 2019 47".
func RemoveCitationLines(text string) string {
	return replaceAll(text, citationLineRes)
}

// RemoveInlineNoise strips DOIs, URLs, email addresses and ISSN codes anywhere in the text.
func RemoveInlineNoise(text string) string {
	return replaceAll(text, inlineNoiseRes)
}

// RemovePageNumberLines removes standalone page numbers.
func RemovePageNumberLines(text string) string {
	return replaceAll(text, pageNumberLineRes)
}

// NormalizeWhitespace collapses space runs and limits blank lines to one.
func NormalizeWhitespace(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")
	return blankLinesRe.ReplaceAllString(text, "\n\n")
}

// FilterLines drops journal lines and one or two character noise lines.
// Short lines followed by a long line are kept as headings. Blank lines are kept.
func FilterLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for i, line := range lines {
		if journalNameLineRe.MatchString(line) {
			continue
		}

		length := utf8.RuneCountInString(strings.TrimSpace(line))
		if length > 0 && length < shortLineLength {
			isHeading := i+1 < len(lines) && utf8.RuneCountInString(strings.TrimSpace(lines[i+1])) > headingFollowerLength
			if !isHeading && length < noiseLineLength {
				continue
			}
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// RemoveRepeatedLines blanks every line of medium length that occurs more than once.
func RemoveRepeatedLines(text string) string {
	lines := strings.Split(text, "\n")

	counts := make(map[string]int)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		length := utf8.RuneCountInString(trimmed)
		if length > minRepeatedLength && length < maxRepeatedLength {
			counts[trimmed]++
		}
	}

	for i, line := range lines {
		if counts[strings.TrimSpace(line)] >= 2 {
			lines[i] = ""
		}
	}

	return strings.Join(lines, "\n")
}

// TruncateTrailingSections cuts the text at conflict of interest, acknowledgement,
// reference and author contribution headings.
func TruncateTrailingSections(text string) string {
	if loc := conflictRe.FindStringIndex(text); loc != nil && loc[0] > 0 {
		text = text[:loc[0]]
	}

	text = truncateBeforeRatio(text, acknowledgeRe)

	for _, loc := range referencesRe.FindAllStringIndex(text, -1) {
		if loc[0] == 0 {
			continue
		}
		if isReferenceSection(text, loc) {
			text = text[:loc[0]]
			break
		}
	}

	return truncateBeforeRatio(text, contributionsRe)
}

// RemoveCaptionLines removes figure and table caption lines.
func RemoveCaptionLines(text string) string {
	return captionLineRe.ReplaceAllString(text, "")
}

// isReferenceSection accepts a reference heading when a numbered list follows it,
// or when it sits in the tail of the text without being its very end.
func isReferenceSection(text string, loc []int) bool {
	if looksLikeReferenceList(text[loc[1]:]) {
		return true
	}
	length := float64(len(text))
	remainder := float64(len(text) - loc[0])
	return float64(loc[0]) < length*sectionPositionRatio && remainder < length*referenceRemainRatio
}

func looksLikeReferenceList(rest string) bool {
	checked := 0
	for _, line := range strings.Split(rest, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if referenceItemRe.MatchString(line) {
			return true
		}
		checked++
		if checked >= referenceLookahead {
			return false
		}
	}
	return false
}

func truncateBeforeRatio(text string, re *regexp.Regexp) string {
	loc := re.FindStringIndex(text)
	if loc == nil || loc[0] == 0 {
		return text
	}
	if float64(loc[0]) < float64(len(text))*sectionPositionRatio {
		return text[:loc[0]]
	}
	return text
}

func removeLiteral(text, literal string) string {
	return regexp.MustCompile(`(?i)`+regexp.QuoteMeta(literal)).ReplaceAllString(text, "")
}

func replaceAll(text string, res []*regexp.Regexp) string {
	for _, re := range res {
		text = re.ReplaceAllString(text, "")
	}
	return text
}
