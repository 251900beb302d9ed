package lookup

import (
	"strings"
)

type CleanFunc func(string) string

func Clean(str string, cleanFuncs ...CleanFunc) string {
	cleaned := str
	for _, clean := range cleanFuncs {
		cleaned = clean(cleaned)
	}

	return cleaned
}

func CleaningPipe(cleanFuncs ...CleanFunc) CleanFunc {
	return func(str string) string {
		return Clean(str, cleanFuncs...)
	}
}

func OneLine(str string) string {
	return strings.Replace(str, "\n", " ", -1)
}

// SingleSpaces collapses runs of white space.
func SingleSpaces(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

var titlePipe = CleaningPipe(
	OneLine,
	SingleSpaces,
	strings.TrimSpace,
)
