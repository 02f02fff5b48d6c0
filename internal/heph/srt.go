package heph

import (
	"regexp"
	"strings"
)

var srtTimeRe = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[.,](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[.,](\d{3})`)

// ParseSRT parses SubRip content into timed segments. Parsing is lenient: a
// block with a malformed timestamp line is skipped, the rest of the input is
// still parsed. Segments are returned in input order, never re-sorted.
func ParseSRT(content string) []Segment {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var segments []Segment

	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		// Locate the timing line; the sequence number line before it is ignored.
		timeIdx := -1
		var m []string
		for i, line := range lines {
			if m = srtTimeRe.FindStringSubmatch(line); m != nil {
				timeIdx = i
				break
			}
		}
		if timeIdx < 0 || timeIdx == len(lines)-1 {
			continue
		}

		text := strings.TrimSpace(strings.Join(lines[timeIdx+1:], " "))
		if text == "" {
			continue
		}

		segments = append(segments, Segment{
			Start: srtTimeSeconds(m[1], m[2], m[3], m[4]),
			End:   srtTimeSeconds(m[5], m[6], m[7], m[8]),
			Text:  text,
		})
	}

	return segments
}

func srtTimeSeconds(h, m, s, ms string) float64 {
	return float64(atoi(h)*3600+atoi(m)*60+atoi(s)) + float64(atoi(ms))/1000.0
}

// atoi parses the already regexp-validated digit groups.
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
