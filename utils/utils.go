package utils

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unicode"
)

var moduleSourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	// compatible solution to get the module source directory with various operating systems
	moduleSourceDir = sourceDir(file)
}

func sourceDir(file string) string {
	dir := filepath.Dir(file)
	dir = filepath.Dir(dir)
	return filepath.ToSlash(dir) + "/"
}

// internal reports whether file belongs to the library itself. Tests and
// the command line tool count as callers.
func internal(file string) bool {
	return strings.HasPrefix(file, moduleSourceDir) &&
		!strings.HasSuffix(file, "_test.go") &&
		!strings.HasPrefix(file, moduleSourceDir+"cmd/")
}

// FileWithLineNum return the file name and line number of the current file
func FileWithLineNum() string {
	frame := CallerFrame()
	if frame.PC != 0 {
		return string(strconv.AppendInt(append([]byte(frame.File), ':'), int64(frame.Line), 10))
	}
	return ""
}

// CallerFrame returns the first frame outside of the library
func CallerFrame() runtime.Frame {
	pcs := [13]uintptr{}
	// the third caller usually from powerjoins internal
	length := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:length])
	for i := 0; i < length; i++ {
		frame, _ := frames.Next()
		if !internal(frame.File) {
			return frame
		}
	}
	return runtime.Frame{}
}

// IsValidDBNameChar reports whether c separates identifiers
func IsValidDBNameChar(c rune) bool {
	return !unicode.IsLetter(c) && !unicode.IsNumber(c) && c != '.' && c != '*' && c != '_' && c != '$' && c != '@'
}

// IsIdentifier reports whether s is a plain, optionally qualified, identifier
func IsIdentifier(s string) bool {
	fields := strings.FieldsFunc(s, IsValidDBNameChar)
	return len(fields) == 1 && fields[0] == s && !strings.ContainsAny(s, "*$@")
}
