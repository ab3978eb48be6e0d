package readfiles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrOpenFailed  = errors.New("open failed")
	ErrEmptyRead   = errors.New("empty read")
	ErrParseFailed = errors.New("parse failed")
)

// ReadErrorKind 单个文件读取失败的类别
type ReadErrorKind int

const (
	OpenFailed ReadErrorKind = iota + 1
	EmptyRead
	ParseFailed
)

func (k ReadErrorKind) String() string {
	switch k {
	case OpenFailed:
		return "open_failed"
	case EmptyRead:
		return "empty_read"
	case ParseFailed:
		return "parse_failed"
	default:
		return "unknown"
	}
}

func (k ReadErrorKind) sentinel() error {
	switch k {
	case OpenFailed:
		return ErrOpenFailed
	case EmptyRead:
		return ErrEmptyRead
	case ParseFailed:
		return ErrParseFailed
	default:
		return nil
	}
}

// ReadError 记录失败的文件、类别以及底层错误，可用 errors.Is 与 ErrOpenFailed 等哨兵错误比较
type ReadError struct {
	Path string
	Kind ReadErrorKind
	Err  error
}

func (e *ReadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Sampler 文件采样器：打开文件，只读取第一行并解析为 float64
type Sampler struct {
	fs afero.Fs
}

// NewSampler 创建采样器，fs 为 nil 时使用真实文件系统
func NewSampler(fs afero.Fs) *Sampler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Sampler{fs: fs}
}

// SampleFile 读取 path 的第一行并解析为数值
// 失败时返回 *ReadError；文件句柄在所有返回路径上都会被释放。
func (s *Sampler) SampleFile(path string) (float64, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return 0, &ReadError{Path: path, Kind: OpenFailed, Err: err}
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, &ReadError{Path: path, Kind: EmptyRead, Err: err}
	}
	// 只有行结束符的首行同样视为没有读到数值
	text := strings.TrimSpace(line)
	if text == "" {
		return 0, &ReadError{Path: path, Kind: EmptyRead}
	}

	value, err := parseValue(text)
	if err != nil {
		return 0, &ReadError{Path: path, Kind: ParseFailed, Err: err}
	}
	return value, nil
}

var errHexValue = errors.New("hexadecimal values are not accepted")

// parseValue 十进制浮点数解析：
// 不接受十六进制；数字之间允许单个下划线（1_000）；nan 可带符号；超出范围时取 ±Inf。
func parseValue(text string) (float64, error) {
	unsigned := strings.TrimLeft(text, "+-")
	if len(text)-len(unsigned) <= 1 {
		if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
			return 0, errHexValue
		}
		if strings.EqualFold(unsigned, "nan") {
			return math.NaN(), nil
		}
	}
	if strings.Contains(text, "_") {
		if !validUnderscores(text) {
			return 0, fmt.Errorf("misplaced underscore in %q", text)
		}
		text = strings.ReplaceAll(text, "_", "")
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return value, nil
}

// validUnderscores 每个下划线两侧都必须是数字
func validUnderscores(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
