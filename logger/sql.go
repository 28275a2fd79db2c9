package logger

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const tmFmtWithMS = "2006-01-02 15:04:05"

func isPrintable(s []byte) bool {
	for _, r := range s {
		if !unicode.IsPrint(rune(r)) {
			return false
		}
	}
	return true
}

// ExplainSQL inlines vars into sql for display. numericPlaceholder matches
// positional placeholders such as `$1`; nil means `?` placeholders.
func ExplainSQL(sql string, numericPlaceholder *regexp.Regexp, escaper string, vars ...interface{}) string {
	converted := make([]string, len(vars))

	for idx, v := range vars {
		if valuer, ok := v.(driver.Valuer); ok {
			v, _ = valuer.Value()
		}

		switch v := v.(type) {
		case bool:
			converted[idx] = strconv.FormatBool(v)
		case time.Time:
			converted[idx] = escaper + v.Format(tmFmtWithMS) + escaper
		case *time.Time:
			if v == nil {
				converted[idx] = "NULL"
			} else {
				converted[idx] = escaper + v.Format(tmFmtWithMS) + escaper
			}
		case []byte:
			if isPrintable(v) {
				converted[idx] = escaper + strings.ReplaceAll(string(v), escaper, "\\"+escaper) + escaper
			} else {
				converted[idx] = escaper + "<binary>" + escaper
			}
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			converted[idx] = fmt.Sprintf("%d", v)
		case float64, float32:
			converted[idx] = fmt.Sprintf("%.6f", v)
		case string:
			converted[idx] = escaper + strings.ReplaceAll(v, escaper, "\\"+escaper) + escaper
		default:
			if v == nil {
				converted[idx] = "NULL"
			} else {
				converted[idx] = escaper + strings.ReplaceAll(fmt.Sprint(v), escaper, "\\"+escaper) + escaper
			}
		}
	}

	if numericPlaceholder == nil {
		var (
			idx    int
			newSQL strings.Builder
		)

		for _, v := range []byte(sql) {
			if v == '?' && len(converted) > idx {
				newSQL.WriteString(converted[idx])
				idx++
				continue
			}
			newSQL.WriteByte(v)
		}
		return newSQL.String()
	}

	sql = numericPlaceholder.ReplaceAllString(sql, "$$$1$$")
	for idx, v := range converted {
		sql = strings.ReplaceAll(sql, "$"+strconv.Itoa(idx+1)+"$", v)
	}
	return sql
}
