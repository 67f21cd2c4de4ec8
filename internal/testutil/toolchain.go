package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/specialistvlad/cbuild/internal/toolchain"
	"github.com/stretchr/testify/require"
)

// FailFlag makes the fake tool chain exit non-zero when passed to it.
const FailFlag = "-DCBUILD_FAIL"

// The fake appends its arguments to a log, then writes whatever follows -o.
// What it writes is itself a shell script printing its own arguments, so
// linked artifacts can be run.
const fakeToolChainScript = `#!/bin/sh
echo "$*" >> %q
out=""
prev=""
for a in "$@"; do
	if [ "$prev" = "-o" ]; then out="$a"; fi
	if [ "$a" = %q ]; then echo "fake tool chain: forced failure" >&2; exit 1; fi
	prev="$a"
done
[ -z "$out" ] && exit 0
mkdir -p "$(dirname "$out")"
printf '#!/bin/sh\necho "ran $*"\n' > "$out"
chmod +x "$out"
`

// The fake archiver appends member names to the archive, the way ar rcs
// keeps members it is not given.
const fakeArchiverScript = `#!/bin/sh
echo "ar $*" >> %q
archive="$2"
shift 2
for m in "$@"; do basename "$m" >> "$archive"; done
`

// FakeToolChain is a POSIX shell stand-in for a compiler and linker.
type FakeToolChain struct {
	Path    string
	LogPath string
}

// NewFakeToolChain installs a fake tool chain in a temporary directory. The
// test is skipped on windows.
func NewFakeToolChain(t *testing.T) *FakeToolChain {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool chain needs a POSIX shell")
	}

	dir := t.TempDir()
	fake := &FakeToolChain{
		Path:    filepath.Join(dir, "fakecc"),
		LogPath: filepath.Join(dir, "invocations.log"),
	}
	script := fmt.Sprintf(fakeToolChainScript, fake.LogPath, FailFlag)
	require.NoError(t, os.WriteFile(fake.Path, []byte(script), 0o755))
	return fake
}

// ToolChain returns a custom tool chain using the fake as compiler and linker.
func (f *FakeToolChain) ToolChain() toolchain.ToolChain {
	return toolchain.ToolChain{Kind: toolchain.Custom, Compiler: f.Path, Linker: f.Path}
}

// Invocations returns the argument lists the fake was called with, in order.
func (f *FakeToolChain) Invocations(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(f.LogPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// InstallOnPath puts the fake on PATH under each of names, next to a fake
// ar, so built-in tool chain families resolve to it.
func (f *FakeToolChain) InstallOnPath(t *testing.T, names ...string) {
	t.Helper()

	bin := filepath.Join(filepath.Dir(f.Path), "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	for _, name := range names {
		require.NoError(t, os.Symlink(f.Path, filepath.Join(bin, name)))
	}
	ar := fmt.Sprintf(fakeArchiverScript, f.LogPath)
	require.NoError(t, os.WriteFile(filepath.Join(bin, "ar"), []byte(ar), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}
