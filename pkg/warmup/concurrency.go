package warmup

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/klothoplatform/warmup/pkg/config"
	"github.com/klothoplatform/warmup/pkg/templateutils"
)

const (
	ConcurrencyEnv = "WARMUP_CONCURRENCY"
	AliasEnv       = "SERVERLESS_ALIAS"
)

// ConcurrencySource records which setting a function's concurrency came from.
type ConcurrencySource string

const (
	FromFunctionEnv ConcurrencySource = "function-specific environment variable"
	FromGlobalEnv   ConcurrencySource = "global environment variable"
	FromConfig      ConcurrencySource = "config"
)

// EnvVarName is the variable that overrides the concurrency of a single function, eg
// WARMUP_CONCURRENCY_MY_SERVICE_DEV_HELLO.
func EnvVarName(function string) string {
	return ConcurrencyEnv + "_" + templateutils.EnvSuffix(function)
}

// Concurrency resolves how many concurrent invocations fn gets. A non-empty function-specific
// variable wins over WARMUP_CONCURRENCY, which wins over the configured value. Override values
// are not validated: anything that doesn't parse as an integer, or is below 1, results in no
// invocations.
func Concurrency(fn config.FunctionTarget, getenv func(string) string) (int, ConcurrencySource) {
	if v := getenv(EnvVarName(fn.Name)); v != "" {
		return invocations(v), FromFunctionEnv
	}
	if v := getenv(ConcurrencyEnv); v != "" {
		return invocations(v), FromGlobalEnv
	}
	if fn.Config.Concurrency < 0 {
		return 0, FromConfig
	}
	return fn.Config.Concurrency, FromConfig
}

func invocations(v string) int {
	n, ok := parseInt(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// parseInt reads the integer prefix of s the way javascript's parseInt does: leading whitespace
// and a sign are accepted, a 0x prefix selects hex, and parsing stops at the first invalid
// digit. ok is false where parseInt would return NaN, including values too large to count.
func parseInt(s string) (n int, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], base, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return int(v), true
}

func isDecimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
