package analytics

import "strings"

// EncodeCSV serializes rows under a fixed header. Every field is wrapped in
// double quotes with embedded quotes doubled, so any value round-trips through
// standard CSV parsing regardless of commas or newlines inside it.
func EncodeCSV(header []string, rows [][]string) []byte {
	var builder strings.Builder
	writeCSVLine(&builder, header)
	for _, row := range rows {
		writeCSVLine(&builder, row)
	}
	return []byte(builder.String())
}

func writeCSVLine(builder *strings.Builder, fields []string) {
	for index, field := range fields {
		if index > 0 {
			builder.WriteByte(',')
		}
		builder.WriteByte('"')
		builder.WriteString(strings.ReplaceAll(field, `"`, `""`))
		builder.WriteByte('"')
	}
	builder.WriteByte('\n')
}
