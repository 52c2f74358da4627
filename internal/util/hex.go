package util

import "strings"

// IsTextData checks if a byte slice contains only printable ASCII text
func IsTextData(data []byte) bool {
	for _, b := range data {
		if b < 32 && b != 9 && b != 10 && b != 13 || b > 126 {
			return false
		}
	}
	return true
}

// HexDump renders data in the classic address/hex/ASCII dump layout.
func HexDump(data []byte) string {
	var sb strings.Builder
	for i := 0; i < len(data); i += 16 {
		writeHexLine(&sb, i, data[i:min(i+16, len(data))])
	}
	return sb.String()
}

const hexDigits = "0123456789abcdef"

func writeHexLine(sb *strings.Builder, addr int, row []byte) {
	sb.WriteByte(hexDigits[addr>>12&0xF])
	sb.WriteByte(hexDigits[addr>>8&0xF])
	sb.WriteByte(hexDigits[addr>>4&0xF])
	sb.WriteByte(hexDigits[addr&0xF])
	sb.WriteString("  ")

	for j := 0; j < 16; j++ {
		if j < len(row) {
			sb.WriteByte(hexDigits[row[j]>>4])
			sb.WriteByte(hexDigits[row[j]&0xF])
			sb.WriteByte(' ')
		} else {
			sb.WriteString("   ")
		}
		if j == 7 {
			sb.WriteByte(' ')
		}
	}

	sb.WriteString(" |")
	for _, b := range row {
		if b >= 32 && b < 127 {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	sb.WriteString("|\n")
}
