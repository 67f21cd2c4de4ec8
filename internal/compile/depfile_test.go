package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepFile(t *testing.T) {
	testCases := []struct {
		name      string
		content   string
		expected  []string
		expectErr bool
	}{
		{
			name:     "single line",
			content:  ".cbuild/obj/app/main.o: src/main.c include/util.h\n",
			expected: []string{"src/main.c", "include/util.h"},
		},
		{
			name:     "continuations",
			content:  "main.o: src/main.c \\\n  include/a.h \\\n  include/b.h\n",
			expected: []string{"src/main.c", "include/a.h", "include/b.h"},
		},
		{
			name:     "escaped space and dollar",
			content:  "main.o: my\\ dir/x.h cost$$.h\n",
			expected: []string{"my dir/x.h", "cost$.h"},
		},
		{
			name:     "windows paths keep backslashes",
			content:  "main.obj: C:\\src\\main.c C:\\inc\\a.h\r\n",
			expected: []string{`C:\src\main.c`, `C:\inc\a.h`},
		},
		{
			name:     "standalone colon",
			content:  "main.o : a.c\n",
			expected: []string{"a.c"},
		},
		{
			name:     "empty",
			content:  "\n\n",
			expected: nil,
		},
		{
			name:      "missing colon",
			content:   "main.o a.c\n",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			deps, err := ParseDepFile([]byte(tc.content))
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, deps)
		})
	}
}
