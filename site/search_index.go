package site

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	searchIndexVersion = 1
	maxPositionsPerDoc = 48
)

// Indexed fields, in the order their frequencies are encoded.
const (
	fieldTitle = iota
	fieldSummary
	fieldContent
	fieldCount
)

var (
	searchIndexFields    = []string{"title", "summary", "content"}
	emptySearchIndexJSON = json.RawMessage(`{"v":1,"c":0,"f":["title","summary","content"],"a":[0,0,0],"d":[],"t":{}}`)
)

type searchPayload struct {
	Version         int               `json:"v"`
	DocCount        int               `json:"c"`
	Fields          []string          `json:"f"`
	AvgFieldLengths []int             `json:"a"`
	Docs            [][]string        `json:"d"`
	Terms           map[string]string `json:"t"`
}

type termEntry struct {
	DocID     int
	Freq      [fieldCount]int
	Positions []int
}

// buildSearchIndex encodes the rendered pages into a compact index. Each doc
// row is [href, title, section, summary, lengths]; each term maps to
// "count|doc:title:summary:content[:positions];...", numbers in base 36.
func buildSearchIndex(pages []page) (json.RawMessage, error) {
	if len(pages) == 0 {
		return append(json.RawMessage(nil), emptySearchIndexJSON...), nil
	}

	docs := make([][]string, 0, len(pages))
	termMap := make(map[string][]*termEntry, len(pages)*16)
	var sumLengths [fieldCount]int

	for docID, pg := range pages {
		docTerms := make(map[string]*termEntry, 64)
		var lengths [fieldCount]int

		for field, text := range [fieldCount]string{pg.Title, pg.Summary, pg.PlainText} {
			pos := 0
			lengths[field] = tokenize(text, func(token string) {
				entry := docTerms[token]
				if entry == nil {
					entry = &termEntry{DocID: docID}
					docTerms[token] = entry
				}
				entry.Freq[field]++
				if field == fieldContent && len(entry.Positions) < maxPositionsPerDoc {
					entry.Positions = append(entry.Positions, pos)
				}
				pos++
			})
			sumLengths[field] += lengths[field]
		}

		docs = append(docs, []string{pg.Route, pg.Title, pg.Section, pg.Summary, encodeLengths(lengths)})
		for term, entry := range docTerms {
			termMap[term] = append(termMap[term], entry)
		}
	}

	terms := make(map[string]string, len(termMap))
	for term, entries := range termMap {
		sort.Slice(entries, func(i, j int) bool { return entries[i].DocID < entries[j].DocID })
		terms[term] = encodeTermEntries(entries)
	}

	avgLengths := make([]int, fieldCount)
	for i := range sumLengths {
		avgLengths[i] = int(math.Round(float64(sumLengths[i]*100) / float64(len(pages))))
	}

	data, err := json.Marshal(searchPayload{
		Version:         searchIndexVersion,
		DocCount:        len(pages),
		Fields:          append([]string(nil), searchIndexFields...),
		AvgFieldLengths: avgLengths,
		Docs:            docs,
		Terms:           terms,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// tokenize splits text into lowercase letter/digit runs with diacritics
// stripped, calls apply for every indexable token and returns their count.
func tokenize(text string, apply func(string)) int {
	if text == "" {
		return 0
	}
	var builder strings.Builder
	count := 0
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		token := builder.String()
		builder.Reset()
		if shouldIndexToken(token) {
			apply(token)
			count++
		}
	}
	for _, r := range norm.NFKD.String(text) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return count
}

// shouldIndexToken drops single non-digit characters.
func shouldIndexToken(token string) bool {
	if token == "" {
		return false
	}
	if len(token) == 1 {
		return token[0] >= '0' && token[0] <= '9'
	}
	return true
}

func encodeTermEntries(entries []*termEntry) string {
	var builder strings.Builder
	builder.Grow(len(entries) * 12)
	builder.WriteString(encodeInt(len(entries)))
	builder.WriteByte('|')
	for i, entry := range entries {
		if i > 0 {
			builder.WriteByte(';')
		}
		builder.WriteString(encodeInt(entry.DocID))
		for _, freq := range entry.Freq {
			builder.WriteByte(':')
			builder.WriteString(encodeInt(freq))
		}
		if len(entry.Positions) > 0 {
			builder.WriteByte(':')
			builder.WriteString(encodePositions(entry.Positions))
		}
	}
	return builder.String()
}

func encodeLengths(lengths [fieldCount]int) string {
	parts := make([]string, 0, fieldCount)
	for _, n := range lengths {
		parts = append(parts, encodeInt(n))
	}
	return strings.Join(parts, ",")
}

func encodeInt(value int) string {
	if value <= 0 {
		return "0"
	}
	return strconv.FormatInt(int64(value), 36)
}

// encodePositions delta-encodes ascending positions joined by '.'.
func encodePositions(positions []int) string {
	parts := make([]string, 0, len(positions))
	prev := 0
	for _, pos := range positions {
		parts = append(parts, encodeInt(pos-prev))
		prev = pos
	}
	return strings.Join(parts, ".")
}
