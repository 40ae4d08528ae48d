package pdftext

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf16"
)

// kernSpace is the TJ displacement, in thousandths of an em, treated as a
// word gap.
const kernSpace = -250

type tokenKind int

const (
	tokOperand tokenKind = iota
	tokString
	tokNumber
	tokArrayStart
	tokArrayEnd
	tokOperator
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

// ShowText returns the strings painted by the text-showing operators (Tj, TJ,
// ' and ") of a decoded page content stream, one entry per operator.
func ShowText(content []byte) []string {
	lx := &lexer{src: content}
	var (
		out     []string
		operand []token
		inArray bool
		array   []token
	)
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokArrayStart:
			inArray, array = true, array[:0]
			continue
		case tokArrayEnd:
			inArray = false
			operand = append(operand, token{kind: tokArrayEnd})
			continue
		}
		if inArray {
			array = append(array, tok)
			continue
		}
		if tok.kind != tokOperator {
			operand = append(operand, tok)
			continue
		}

		switch tok.text {
		case "Tj", "'", `"`:
			if s := lastString(operand); s != "" {
				out = append(out, s)
			}
		case "TJ":
			if s := joinArray(array); s != "" {
				out = append(out, s)
			}
		case "ID":
			lx.skipInlineImage()
		}
		operand = operand[:0]
	}
	return out
}

func lastString(ops []token) string {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].kind == tokString {
			return ops[i].text
		}
	}
	return ""
}

func joinArray(items []token) string {
	var b strings.Builder
	for _, it := range items {
		switch it.kind {
		case tokString:
			b.WriteString(it.text)
		case tokNumber:
			if it.num <= kernSpace {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

type lexer struct {
	src []byte
	pos int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (l *lexer) next() (token, bool) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			l.pos++
			return token{kind: tokString, text: l.literal()}, true
		case c == '<' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '<':
			l.pos += 2
			return token{kind: tokOperand, text: "<<"}, true
		case c == '>' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '>':
			l.pos += 2
			return token{kind: tokOperand, text: ">>"}, true
		case c == '<':
			l.pos++
			return token{kind: tokString, text: l.hexString()}, true
		case c == '[':
			l.pos++
			return token{kind: tokArrayStart}, true
		case c == ']':
			l.pos++
			return token{kind: tokArrayEnd}, true
		case c == '/':
			l.pos++
			return token{kind: tokOperand, text: "/" + l.word()}, true
		case c == '{' || c == '}' || c == ')' || c == '>':
			l.pos++
		default:
			w := l.word()
			if f, err := strconv.ParseFloat(w, 64); err == nil {
				return token{kind: tokNumber, num: f, text: w}, true
			}
			if w == "true" || w == "false" || w == "null" {
				return token{kind: tokOperand, text: w}, true
			}
			return token{kind: tokOperator, text: w}, true
		}
	}
	return token{}, false
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.src) && !isSpace(l.src[l.pos]) && !isDelim(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == start && l.pos < len(l.src) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

func (l *lexer) literal() string {
	var raw []byte
	depth := 1
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.src) {
				return decodeText(raw)
			}
			e := l.src[l.pos]
			l.pos++
			switch e {
			case 'n':
				raw = append(raw, '\n')
			case 'r':
				raw = append(raw, '\r')
			case 't':
				raw = append(raw, '\t')
			case 'b':
				raw = append(raw, '\b')
			case 'f':
				raw = append(raw, '\f')
			case '\r':
				if l.pos < len(l.src) && l.src[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '7'; i++ {
						v = v*8 + int(l.src[l.pos]-'0')
						l.pos++
					}
					raw = append(raw, byte(v))
				} else {
					raw = append(raw, e)
				}
			}
		case '(':
			depth++
			raw = append(raw, c)
		case ')':
			depth--
			if depth == 0 {
				return decodeText(raw)
			}
			raw = append(raw, c)
		default:
			raw = append(raw, c)
		}
	}
	return decodeText(raw)
}

func (l *lexer) hexString() string {
	var digits []byte
	for l.pos < len(l.src) && l.src[l.pos] != '>' {
		if c := l.src[l.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw, err := hex.DecodeString(string(digits))
	if err != nil {
		return ""
	}
	return decodeText(raw)
}

// skipInlineImage moves past the binary payload of an inline image up to
// and including its EI operator.
func (l *lexer) skipInlineImage() {
	if l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	for l.pos+2 <= len(l.src) {
		if l.src[l.pos] == 'E' && l.src[l.pos+1] == 'I' &&
			(l.pos == 0 || isSpace(l.src[l.pos-1])) &&
			(l.pos+2 == len(l.src) || isSpace(l.src[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.src)
}

// decodeText interprets a PDF string: UTF-16BE when it carries a byte order
// mark, otherwise one byte per character.
func decodeText(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, (len(raw)-2)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return string(utf16.Decode(units))
	}
	rs := make([]rune, 0, len(raw))
	for _, b := range raw {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			continue
		}
		rs = append(rs, rune(b))
	}
	return string(rs)
}
