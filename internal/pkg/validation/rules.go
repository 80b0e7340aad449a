package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the accepted date format (HTML date inputs submit this)
const DateLayout = "2006-01-02"

// MaxDocIDLength bounds identifiers used as document keys
const MaxDocIDLength = 128

// Validation rule patterns
var (
	DecimalPattern = `^\d+(\.\d+)?$`
	YearPattern    = `^\d{4}$`
	PhonePattern   = `^\+?[0-9][0-9 \-]{5,19}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Decimal *regexp.Regexp
	Year    *regexp.Regexp
	Phone   *regexp.Regexp
}{
	Decimal: regexp.MustCompile(DecimalPattern),
	Year:    regexp.MustCompile(YearPattern),
	Phone:   regexp.MustCompile(PhonePattern),
}

// IsDocID reports whether s can be used as a document key: non-blank, no
// slashes, not a dot path segment, bounded length.
func IsDocID(s string) bool {
	if strings.TrimSpace(s) == "" || utf8.RuneCountInString(s) > MaxDocIDLength {
		return false
	}
	if s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\")
}

// IsDate reports whether s is a calendar date in YYYY-MM-DD form
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// RegisterRules adds the custom tags used by request DTOs:
// docid, isodate, decimal, year, phone.
func RegisterRules(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		"docid":   IsDocID,
		"isodate": IsDate,
		"decimal": CompiledPatterns.Decimal.MatchString,
		"year":    CompiledPatterns.Year.MatchString,
		"phone":   CompiledPatterns.Phone.MatchString,
	}
	for tag, check := range rules {
		check := check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}
