package builder

import (
	"fmt"
	"strings"

	nt "srql/entity"
)

// Code tags the reason a query string failed to parse.
type Code string

const (
	MissingEntity           Code = "missing_entity"
	InvalidSort             Code = "invalid_sort"
	InvalidToken            Code = "invalid_token"
	UnsupportedTokens       Code = "unsupported_tokens"
	UnsupportedFilterFields Code = "unsupported_filter_fields"
	InvalidBucket           Code = "invalid_bucket"
	InvalidAgg              Code = "invalid_agg"
	UnsupportedSeriesField  Code = "unsupported_series_field"
	DownsampleNotSupported  Code = "downsample_not_supported"
)

// ParseError is a tagged parse failure. Detail carries the offending tokens,
// fields, or value depending on the code.
type ParseError struct {
	Code   Code
	Detail []string
}

func (pe *ParseError) Error() string {
	if len(pe.Detail) == 0 {
		return string(pe.Code)
	}
	return fmt.Sprintf("%s: %s", pe.Code, strings.Join(pe.Detail, ", "))
}

func parseError(code Code, detail ...string) *ParseError {
	return &ParseError{Code: code, Detail: detail}
}

// Parse tokenizes a text query into structured state, validating against the
// resolved entity's catalog rules. The returned state is normalized.
func (bld *Builder) Parse(query string) (state nt.QueryState, err error) {

	tokens := tokenize(query)
	if len(tokens) == 0 || !strings.HasPrefix(tokens[0], "in:") {
		err = parseError(MissingEntity)
		return
	}

	state.Entity = strings.ToLower(unquote(tokens[0][len("in:"):]))
	if state.Entity == "" {
		err = parseError(MissingEntity)
		return
	}
	ec := bld.catalog.Entity(state.Entity)

	var unsupported []string
	var badFields []string

	for _, token := range tokens[1:] {
		switch {

		case strings.HasPrefix(token, "time:"):
			state.Time = normalizeTime(token[len("time:"):])

		case strings.HasPrefix(token, "bucket:"):
			state.Bucket = token[len("bucket:"):]

		case strings.HasPrefix(token, "agg:"):
			state.Agg = strings.ToLower(token[len("agg:"):])

		case strings.HasPrefix(token, "series:"):
			state.Series = token[len("series:"):]

		case strings.HasPrefix(token, "sort:"), strings.HasPrefix(token, "order:"):
			_, rest, _ := strings.Cut(token, ":")
			parts := strings.Split(rest, ":")
			if len(parts) != 2 || parts[0] == "" {
				err = parseError(InvalidSort, token)
				return
			}
			state.SortField = parts[0]
			state.SortDir = strings.ToLower(parts[1])

		case strings.HasPrefix(token, "limit:"):
			state.Limit = NormalizeLimit(token[len("limit:"):])

		case !strings.Contains(token, ":"):
			unsupported = append(unsupported, token)

		default:
			var filter nt.Filter
			filter, err = parseFilter(token)
			if err != nil {
				return
			}
			if !ec.AllowsFilter(filter.Field) {
				badFields = append(badFields, filter.Field)
			}
			state.Filters = append(state.Filters, filter)
		}
	}

	if len(unsupported) > 0 {
		err = parseError(UnsupportedTokens, unsupported...)
		return
	}
	if len(badFields) > 0 {
		err = parseError(UnsupportedFilterFields, badFields...)
		return
	}

	err = validateDownsample(ec, state)
	if err != nil {
		return
	}

	state = bld.Normalize(state)
	return
}

// parseFilter interprets a [!]field:value token. A %-wrapped value means
// substring match; escaped spaces are unescaped.
func parseFilter(token string) (filter nt.Filter, err error) {

	negated := strings.HasPrefix(token, "!")
	token = strings.TrimPrefix(token, "!")

	field, value, _ := strings.Cut(token, ":")
	if field == "" {
		err = parseError(InvalidToken, token)
		return
	}

	value = unquote(value)
	wrapped := len(value) >= 2 && strings.HasPrefix(value, "%") && strings.HasSuffix(value, "%")
	if wrapped {
		value = value[1 : len(value)-1]
	}

	filter = nt.Filter{
		Field: strings.ToLower(field),
		Op:    filterOp(negated, wrapped),
		Value: unescape(value),
	}
	return
}

func filterOp(negated, wrapped bool) nt.Op {
	switch {
	case wrapped && negated:
		return nt.OpNotContains
	case wrapped:
		return nt.OpContains
	case negated:
		return nt.OpNotEquals
	default:
		return nt.OpEquals
	}
}

// tokenize splits on whitespace, honoring backslash escapes so values with
// escaped spaces stay in one token. Escape sequences are kept verbatim.
func tokenize(input string) (tokens []string) {

	var current strings.Builder
	escape := false

	for _, ch := range input {
		switch {
		case escape:
			current.WriteRune('\\')
			current.WriteRune(ch)
			escape = false
		case ch == '\\':
			escape = true
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}
	if escape {
		current.WriteRune('\\')
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return
}

// unescape reverses the builder's space escaping in filter values.
func unescape(value string) string {
	return strings.ReplaceAll(value, `\ `, " ")
}

// escape protects spaces in a filter value so it survives tokenizing.
func escape(value string) string {
	return strings.ReplaceAll(value, " ", `\ `)
}

// unquote tolerates values wrapped in single or double quotes.
func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
