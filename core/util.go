package core

import (
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSeparators   = regexp.MustCompile(`[\s_-]+`)
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Slugify lowers `s`, drops anything that is not alphanumeric and joins the words with dashes.
func Slugify(s string) string {
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, CleanString(s, true /* lower */))
	s = slugInvalidChars.ReplaceAllString(s, "")
	return strings.Trim(slugSeparators.ReplaceAllString(s, "-"), "-")
}

// ParseIDs parses a comma separated list of IDs (eg: "1,2,3"). Invalid entries are skipped.
func ParseIDs(values ...string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, val := range values {
		for _, part := range strings.Split(val, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run during tests.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // deployed binaries run without sources
		}
		currDir = newDir
	}
}
