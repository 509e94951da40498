package typexpr

import (
	"strconv"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
	"golang.org/x/text/unicode/norm"

	tserr "github.com/nooga/tsblame/pkg/errors"
	"github.com/nooga/tsblame/pkg/source"
)

const (
	whitespaceToken = iota
	lineCommentToken
	blockCommentToken
	singleQuotedToken
	doubleQuotedToken
	identifierToken
	numberToken
	punctToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var lineCommentMatcher = parsly.NewToken(lineCommentToken, "LineComment", &lineCommentMatch{})
var blockCommentMatcher = parsly.NewToken(blockCommentToken, "CommentBlock", matcher.NewSeqBlock("/*", "*/"))
var singleQuotedMatcher = parsly.NewToken(singleQuotedToken, "SingleQuote", matcher.NewBlock('\'', '\'', '\\'))
var doubleQuotedMatcher = parsly.NewToken(doubleQuotedToken, "DoubleQuote", matcher.NewBlock('"', '"', '\\'))
var identifierMatcher = parsly.NewToken(identifierToken, "Identifier", &identifierMatch{})
var numberMatcher = parsly.NewToken(numberToken, "Number", matcher.NewNumber())
var punctMatcher = parsly.NewToken(punctToken, "Punctuation", &punctMatch{})

type lineCommentMatch struct{}

func (l *lineCommentMatch) Match(cursor *parsly.Cursor) int {
	pos := cursor.Pos
	if pos+1 >= cursor.InputSize || cursor.Input[pos] != '/' || cursor.Input[pos+1] != '/' {
		return 0
	}
	end := pos + 2
	for end < cursor.InputSize && cursor.Input[end] != '\n' {
		end++
	}
	return end - pos
}

type identifierMatch struct{}

func (i *identifierMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize {
		return 0
	}
	if !isIdentifierStart(cursor.Input[cursor.Pos]) {
		return 0
	}
	pos := cursor.Pos + 1
	for pos < cursor.InputSize && isIdentifierPart(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

func isIdentifierStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b == '$'
}

func isIdentifierPart(b byte) bool {
	return isIdentifierStart(b) || (b >= '0' && b <= '9')
}

const punctuation = "()[]{},;.=:"

type punctMatch struct{}

func (p *punctMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos < cursor.InputSize && strings.IndexByte(punctuation, cursor.Input[cursor.Pos]) >= 0 {
		return 1
	}
	return 0
}

type token struct {
	code   int
	text   string
	offset int
}

func (t token) is(code int, text string) bool {
	return t.code == code && t.text == text
}

// tokenize splits src into tokens, dropping whitespace and comments.
func tokenize(src *source.SourceFile) ([]token, error) {
	cursor := parsly.NewCursor(src.DisplayPath(), []byte(src.Content), 0)
	var tokens []token
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAfterOptional(whitespaceMatcher,
			lineCommentMatcher,
			blockCommentMatcher,
			singleQuotedMatcher,
			doubleQuotedMatcher,
			identifierMatcher,
			punctMatcher,
			numberMatcher,
		)
		switch matched.Code {
		case parsly.EOF:
			return tokens, nil
		case lineCommentToken, blockCommentToken:
			continue
		case parsly.Invalid:
			offset := skipSpace(src.Content, cursor.Pos)
			if offset >= len(src.Content) {
				return tokens, nil
			}
			return nil, &tserr.SyntaxError{
				Position: tserr.PositionAt(src, offset),
				Msg:      "unexpected character " + strconv.QuoteRune(rune(src.Content[offset])),
			}
		}
		tokens = append(tokens, token{code: matched.Code, text: matched.Text(cursor), offset: matched.Offset})
	}
	return tokens, nil
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && strings.IndexByte(" \t\r\n", s[pos]) >= 0 {
		pos++
	}
	return pos
}

// unquote decodes a single or double quoted literal and normalises it to
// NFC so that property names compare equal however the source spelled them.
func unquote(text string) (string, error) {
	if len(text) < 2 {
		return "", strconv.ErrSyntax
	}
	body := text[1 : len(text)-1]
	if text[0] == '\'' {
		var sb strings.Builder
		for i := 0; i < len(body); i++ {
			switch c := body[i]; {
			case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
				sb.WriteByte('\'')
				i++
			case c == '\\' && i+1 < len(body):
				sb.WriteByte(c)
				sb.WriteByte(body[i+1])
				i++
			case c == '"':
				sb.WriteString(`\"`)
			default:
				sb.WriteByte(c)
			}
		}
		body = sb.String()
	}
	res, err := strconv.Unquote(`"` + body + `"`)
	if err != nil {
		return "", err
	}
	return norm.NFC.String(res), nil
}
