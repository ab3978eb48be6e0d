package util

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

// 定义颜色常量
const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[1;31m"
	ColorGreen  = "\x1b[1;32m"
	ColorYellow = "\x1b[1;33m"
	ColorBlue   = "\x1b[1;34m"
	ColorCyan   = "\x1b[1;36m"
)

// colorCode 颜色名转 ANSI 颜色码，未知颜色返回空串
func colorCode(name string) string {
	switch name {
	case "ColorRed":
		return ColorRed
	case "ColorGreen":
		return ColorGreen
	case "ColorYellow":
		return ColorYellow
	case "ColorBlue":
		return ColorBlue
	case "ColorCyan":
		return ColorCyan
	default:
		return ""
	}
}

// PrintBanner 向 w 打印整体统一颜色的 ASCII banner，color 为空时不着色
func PrintBanner(w io.Writer, text, color string) {
	lines := figure.NewFigure(text, "", true).Slicify()

	ansiColor := colorCode(color)
	for _, line := range lines {
		if ansiColor == "" {
			fmt.Fprintln(w, line)
			continue
		}
		fmt.Fprintln(w, ansiColor+line+ColorReset)
	}
}
