package extract

import (
	"regexp"
	"strings"
)

var (
	reSRTIndex  = regexp.MustCompile(`^\d+$`)
	reMarkup    = regexp.MustCompile(`<[^>]*>`)
	reASSInline = regexp.MustCompile(`\{[^}]*\}`)
)

// StripSRT keeps only the dialogue lines of a SubRip file.
func StripSRT(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || reSRTIndex.MatchString(line) || strings.Contains(line, "-->") {
			continue
		}
		line = strings.TrimSpace(reMarkup.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// StripASS keeps the text field of every Dialogue event of an ASS/SSA file,
// without override blocks.
func StripASS(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if !strings.HasPrefix(line, "Dialogue:") {
			continue
		}
		// Layer,Start,End,Style,Name,MarginL,MarginR,MarginV,Effect,Text
		fields := strings.SplitN(line, ",", 10)
		if len(fields) < 10 {
			continue
		}
		body := reASSInline.ReplaceAllString(fields[9], "")
		body = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, " ").Replace(body)
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		sb.WriteString(body)
		sb.WriteByte('\n')
	}
	return sb.String()
}
