package extract

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// kerningSpace is the TJ adjustment (thousandths of an em) treated as a word
// break.
const kerningSpace = -250

// pageText scrapes the strings shown by text operators in a decoded content
// stream. Vertical moves start a new line.
func pageText(content string) string {
	var (
		lines   []string
		line    strings.Builder
		pending []string
		nums    []float64
		inArray bool
		lastY   float64
		haveY   bool
	)

	newline := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}

	for i := 0; i < len(content); {
		c := content[i]
		switch {
		case c == '%':
			for i < len(content) && content[i] != '\n' && content[i] != '\r' {
				i++
			}
		case c == '(':
			raw, next := readLiteral(content, i)
			pending = append(pending, decodeString(raw))
			i = next
		case c == '<' && i+1 < len(content) && content[i+1] == '<':
			i += 2
		case c == '>' && i+1 < len(content) && content[i+1] == '>':
			i += 2
		case c == '<':
			raw, next := readHex(content, i)
			pending = append(pending, decodeString(raw))
			i = next
		case c == '[':
			inArray = true
			i++
		case c == ']':
			inArray = false
			i++
		case isDelimiter(c) || isSpace(c):
			i++
		default:
			start := i
			for i < len(content) && !isDelimiter(content[i]) && !isSpace(content[i]) {
				i++
			}
			token := content[start:i]

			if v, err := strconv.ParseFloat(token, 64); err == nil {
				if inArray && v <= kerningSpace {
					pending = append(pending, " ")
				}
				nums = append(nums, v)
				continue
			}

			switch token {
			case "Tj", "TJ":
				line.WriteString(strings.Join(pending, ""))
			case "'", "\"":
				newline()
				line.WriteString(strings.Join(pending, ""))
			case "T*":
				newline()
			case "Td", "TD":
				if len(nums) >= 2 && nums[len(nums)-1] != 0 {
					newline()
				}
			case "Tm":
				if len(nums) >= 6 {
					y := nums[len(nums)-1]
					if haveY && y != lastY {
						newline()
					}
					lastY, haveY = y, true
				}
			case "ID":
				// Skip inline image data
				if end := strings.Index(content[i:], "EI"); end >= 0 {
					i += end + 2
				} else {
					i = len(content)
				}
			}
			pending = nil
			nums = nil
		}
	}
	newline()

	return cleanupExtractedText(strings.Join(lines, "\n"))
}

// readLiteral returns the raw bytes of a literal string starting at the
// opening parenthesis at start, with escapes resolved.
func readLiteral(content string, start int) ([]byte, int) {
	var out []byte
	depth := 0
	i := start
	for i < len(content) {
		c := content[i]
		switch {
		case c == '\\' && i+1 < len(content):
			i++
			e := content[i]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if i+1 < len(content) && content[i+1] == '\n' {
					i++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := 0
					n := 0
					for n < 3 && i < len(content) && content[i] >= '0' && content[i] <= '7' {
						v = v*8 + int(content[i]-'0')
						i++
						n++
					}
					out = append(out, byte(v))
					continue
				}
				out = append(out, e)
			}
			i++
		case c == '(':
			if depth > 0 {
				out = append(out, c)
			}
			depth++
			i++
		case c == ')':
			depth--
			i++
			if depth == 0 {
				return out, i
			}
			out = append(out, c)
		default:
			out = append(out, c)
			i++
		}
	}
	return out, i
}

func readHex(content string, start int) ([]byte, int) {
	var digits []byte
	i := start + 1
	for i < len(content) && content[i] != '>' {
		if isHexDigit(content[i]) {
			digits = append(digits, content[i])
		}
		i++
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, 0, len(digits)/2)
	for j := 0; j < len(digits); j += 2 {
		v, _ := strconv.ParseUint(string(digits[j:j+2]), 16, 8)
		out = append(out, byte(v))
	}
	return out, i + 1
}

// decodeString maps string bytes to UTF-8: UTF-16BE when a byte order mark is
// present, WinAnsi otherwise.
func decodeString(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, len(raw)/2)
		for j := 2; j+1 < len(raw); j += 2 {
			units = append(units, uint16(raw[j])<<8|uint16(raw[j+1]))
		}
		return string(utf16.Decode(units))
	}

	s, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(s)
}

// cleanupExtractedText cleans up and formats extracted text
func cleanupExtractedText(text string) string {
	text = removeBinaryCharacters(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.Join(strings.Fields(line), " ")

		// Basic sentence formatting
		line = strings.ReplaceAll(line, " .", ".")
		line = strings.ReplaceAll(line, " ,", ",")
		line = strings.ReplaceAll(line, " !", "!")
		line = strings.ReplaceAll(line, " ?", "?")
		lines[i] = line
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// removeBinaryCharacters drops control characters other than line breaks and
// tabs, which become spaces.
func removeBinaryCharacters(text string) string {
	var result strings.Builder
	for _, r := range text {
		switch {
		case r == '\n':
			result.WriteRune(r)
		case r == '\t' || r == '\r':
			result.WriteRune(' ')
		case r == unicode.ReplacementChar:
		case unicode.IsPrint(r) || unicode.IsSpace(r):
			result.WriteRune(r)
		case r < 32:
			result.WriteRune(' ')
		}
	}
	return result.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
