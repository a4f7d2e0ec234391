//go:build windows

package command

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// preferredCharset maps the active ANSI code page to a charset label.
func preferredCharset() string {
	return charsetFromCodePage(windows.GetACP())
}

func charsetFromCodePage(cp uint32) string {
	switch cp {
	case 65001:
		return "utf-8"
	case 932:
		return "shift_jis"
	case 936:
		return "gbk"
	case 949:
		return "euc-kr"
	case 950:
		return "big5"
	default:
		return fmt.Sprintf("windows-%d", cp)
	}
}
