/*
export.go - Month-filtered CSV serialization

PURPOSE:
  Serializes one calendar month of worklogs to the report format the
  downstream spreadsheet tooling expects. The format is bit-pinned:

    UTF-8 with BOM (EF BB BF)
    header line 日期,時數,原因,備註
    one row per record, \n line endings, comma separator
    comma inside reason/notes  -> full-width comma "，"
    newline inside reason/notes -> single space

  The substitution escaping (not RFC 4180 quoting) is what keeps the
  output parseable by the fixed separator scheme, so encoding/csv is
  deliberately not used here.

SEE ALSO:
  - aggregate.go: MonthOf does the filtering and ordering
*/
package worklog

import (
	"strings"
	"time"
)

// ExportBOM is the byte-order marker prefixed to every report so
// spreadsheet tools detect the encoding.
const ExportBOM = "\uFEFF"

// ExportHeader is the fixed four-field header row.
const ExportHeader = "日期,時數,原因,備註"

// ExportMonth serializes the records of the given year/month, ordered
// ascending by day. Returns ErrEmptyReport when nothing matches; the
// caller surfaces that as an informational notice.
func ExportMonth(records []WorklogRecord, year int, month time.Month) (string, error) {
	bucket := MonthOf(records, year, month)
	if len(bucket.Records) == 0 {
		return "", ErrEmptyReport
	}

	var b strings.Builder
	b.WriteString(ExportBOM)
	b.WriteString(ExportHeader)
	b.WriteByte('\n')

	for _, r := range bucket.Records {
		day, _ := r.Day() // MonthOf only keeps normalizable days
		b.WriteString(day.ISO())
		b.WriteByte(',')
		b.WriteString(r.DurationHours.String())
		b.WriteByte(',')
		b.WriteString(escapeField(r.Reason))
		b.WriteByte(',')
		b.WriteString(escapeField(r.Notes))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// escapeField keeps the separator scheme intact by substitution.
func escapeField(s string) string {
	s = strings.ReplaceAll(s, ",", "，")
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
