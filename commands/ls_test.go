package commands

import (
	"io/fs"
	"testing"
	"time"

	fcolor "github.com/fatih/color"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/josephlewis42/pipesh/core/vos/vostest"
	"github.com/stretchr/testify/assert"
)

var lsFiles = map[string]string{
	"b.txt":   "bb",
	"a.txt":   "a",
	".hidden": "",
	"docs/":   "",
}

func TestLs(t *testing.T) {
	cases := goldenTestSuite{
		"empty":   {Args: []string{"ls", "/tmp"}},
		"cwd":     {Args: []string{"ls"}, Setup: writeFiles(lsFiles)},
		"all":     {Args: []string{"ls", "-a"}, Setup: writeFiles(lsFiles)},
		"narrow":  {Args: []string{"ls"}, Env: []string{"COLUMNS=10"}, Setup: writeFiles(lsFiles)},
		"file":    {Args: []string{"ls", "a.txt"}, Setup: writeFiles(lsFiles)},
		"multi":   {Args: []string{"ls", "/tmp", "/home"}},
		"missing": {Args: []string{"ls", "missing"}},
		"one":     {Args: []string{"ls", "-1"}, Setup: writeFiles(lsFiles)},
		"reverse": {Args: []string{"ls", "-r"}, Setup: writeFiles(lsFiles)},
	}

	cases.Run(t, Ls)
}

func TestLs_long(t *testing.T) {
	cmd := vostest.Command(vos.NewProgram("ls", Ls), "ls", "-l")
	cmd.Setup = func(virtOS vos.VOS) error {
		if err := writeFiles(map[string]string{"a.txt": "hello"})(virtOS); err != nil {
			return err
		}
		modified := time.Date(2005, 6, 7, 8, 9, 10, 0, time.UTC)
		return virtOS.Chtimes("a.txt", modified, modified)
	}

	out, err := cmd.CombinedOutput()
	assert.NoError(t, err)
	assert.Equal(t, 0, cmd.ExitStatus)
	assert.Regexp(t, `^total 5\n\S+ 1 tester tester 5 Jun  7 2005 a\.txt\n$`, string(out))
}

func TestColumnize(t *testing.T) {
	cases := map[string]struct {
		lengths  []int
		width    int
		expected []int
	}{
		"none":     {nil, 80, []int{0}},
		"one-row":  {[]int{1, 2, 3}, 80, []int{1, 2, 3}},
		"narrow":   {[]int{4, 4, 4}, 10, []int{4, 4}},
		"one-col":  {[]int{6, 6}, 5, []int{6}},
		"no-empty": {[]int{1, 1, 1, 1}, 9, []int{1, 1}},
		"uneven":   {[]int{1, 8, 2, 2}, 12, []int{8, 2}},
	}

	for tn, tc := range cases {
		tc := tc
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, columnize(tc.lengths, tc.width))
		})
	}
}

func TestDirColor(t *testing.T) {
	cases := map[string]struct {
		info     fakeFileInfo
		expected *fcolor.Color
	}{
		"dir":        {fakeFileInfo{"docs", fs.ModeDir | 0755}, ColorBoldBlue},
		"symlink":    {fakeFileInfo{"link", fs.ModeSymlink | 0777}, ColorBoldCyan},
		"executable": {fakeFileInfo{"run.sh", 0755}, ColorBoldGreen},
		"archive":    {fakeFileInfo{"site.tar", 0644}, ColorBoldRed},
	}

	for tn, tc := range cases {
		tc := tc
		t.Run(tn, func(t *testing.T) {
			assert.Same(t, tc.expected, dirColor(tc.info))
		})
	}

	assert.Equal(t, fcolor.New(fcolor.FgHiWhite), dirColor(fakeFileInfo{"a.txt", 0644}))
}

type fakeFileInfo struct {
	name string
	mode fs.FileMode
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() fs.FileMode  { return f.mode }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeFileInfo) Sys() interface{}   { return nil }
