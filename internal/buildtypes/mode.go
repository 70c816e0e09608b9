// internal/buildtypes/mode.go
package buildtypes

import (
	"fmt"
	"strings"
)

// Mode 选择远端构建服务的处理方式。
// 只有 ModeRAS 和 ModeTIV 两个合法值。
type Mode string

const (
	ModeRAS Mode = "ras" // RAS allocation matrix
	ModeTIV Mode = "tiv" // TIV weighted matrix
)

// Modes 返回所有可识别的模式，顺序固定。
func Modes() []Mode {
	return []Mode{ModeRAS, ModeTIV}
}

// UnknownModeError 表示模式不在可识别的集合中。
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("未知的构建模式 %q (可选: ras, tiv)", e.Mode)
}

// ParseMode 解析用户输入的模式，忽略大小写和首尾空白。
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &UnknownModeError{Mode: s}
	}
	return m, nil
}

// Valid reports whether m is one of the recognized modes.
func (m Mode) Valid() bool {
	return m == ModeRAS || m == ModeTIV
}

func (m Mode) String() string {
	return string(m)
}
