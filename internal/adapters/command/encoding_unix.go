//go:build !windows

package command

import (
	"os"
	"strings"
)

// preferredCharset derives the charset from the locale environment in the
// order the C library consults it.
func preferredCharset() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return charsetFromLocale(v)
		}
	}
	return "utf-8"
}

// charsetFromLocale extracts "UTF-8" from "en_US.UTF-8@euro". The C and POSIX
// locales are treated as UTF-8.
func charsetFromLocale(locale string) string {
	if locale == "C" || locale == "POSIX" {
		return "utf-8"
	}
	i := strings.IndexByte(locale, '.')
	if i < 0 {
		return "utf-8"
	}
	charset := locale[i+1:]
	if at := strings.IndexByte(charset, '@'); at >= 0 {
		charset = charset[:at]
	}
	if charset == "" {
		return "utf-8"
	}
	return charset
}
