package compile

import (
	"fmt"
	"strings"
)

// ParseDepFile extracts the prerequisites from a make-style dependency file
// as written by `-MMD -MF`. Escaped spaces (`\ `), escaped hashes and `$$`
// are unescaped; any other backslash is kept so Windows paths survive.
func ParseDepFile(content []byte) ([]string, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\\\n", " ")

	var deps []string
	for _, line := range strings.Split(text, "\n") {
		words := splitDepWords(line)
		if len(words) == 0 || strings.HasPrefix(words[0], "#") {
			continue
		}

		sep := -1
		for i, w := range words {
			if strings.HasSuffix(w, ":") {
				sep = i
				break
			}
		}
		if sep < 0 {
			return nil, fmt.Errorf("depfile: expected ':' in rule %q", strings.TrimSpace(line))
		}
		deps = append(deps, words[sep+1:]...)
	}
	return deps, nil
}

func splitDepWords(line string) []string {
	var (
		words  []string
		cur    strings.Builder
		inWord bool
	)
	flush := func() {
		if inWord {
			words = append(words, cur.String())
			cur.Reset()
			inWord = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line) && (line[i+1] == ' ' || line[i+1] == '#'):
			cur.WriteByte(line[i+1])
			i++
			inWord = true
		case c == '$' && i+1 < len(line) && line[i+1] == '$':
			cur.WriteByte('$')
			i++
			inWord = true
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	flush()
	return words
}
