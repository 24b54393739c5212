package commands

import (
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	fcolor "github.com/fatih/color"
	"github.com/josephlewis42/pipesh/core/vos"
)

// defaultLineWidth is used when COLUMNS isn't set.
const defaultLineWidth = 80

// lsColumnPadding separates columns in the short listing.
const lsColumnPadding = 2

var archiveExtensions = map[string]bool{
	".tar": true,
	".tgz": true,
	".zip": true,
	".gz":  true,
	".bz2": true,
	".deb": true,
	".rpm": true,
	".jar": true,
}

// dirColor picks the color of an entry the way dircolors does by default.
func dirColor(info fs.FileInfo) *fcolor.Color {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return ColorBoldBlue
	case mode&fs.ModeSymlink != 0:
		return ColorBoldCyan
	case mode&(fs.ModeDevice|fs.ModeNamedPipe|fs.ModeSocket|fs.ModeCharDevice) != 0:
		return fcolor.New(fcolor.FgYellow, fcolor.BgBlack, fcolor.Bold)
	case mode.Perm()&ModeExec != 0:
		return ColorBoldGreen
	case archiveExtensions[path.Ext(info.Name())]:
		return ColorBoldRed
	default:
		return fcolor.New(fcolor.FgHiWhite)
	}
}

// lsListing holds the options of a single ls invocation.
type lsListing struct {
	virtOS vos.VOS
	color  ColorPrinter

	all        bool
	long       bool
	onePerLine bool
	reverse    bool
	width      int
	size       func(int64) string
}

// entries returns the visible entries of a directory, or the file itself,
// sorted by name.
func (l *lsListing) entries(name string) ([]fs.FileInfo, error) {
	info, err := l.virtOS.Stat(name)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []fs.FileInfo{info}, nil
	}

	children, err := l.virtOS.ReadDir(name)
	if err != nil {
		return nil, err
	}

	var out []fs.FileInfo
	for _, child := range children {
		if l.all || !strings.HasPrefix(child.Name(), ".") {
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if l.reverse {
			return out[i].Name() > out[j].Name()
		}
		return out[i].Name() < out[j].Name()
	})
	return out, nil
}

func (l *lsListing) name(info fs.FileInfo) string {
	return l.color.Sprintf(dirColor(info), "%s", info.Name())
}

// writeLong prints one entry per line with its mode, owner, size and time.
func (l *lsListing) writeLong(w io.Writer, entries []fs.FileInfo) {
	var total int64
	for _, info := range entries {
		total += info.Size()
	}
	fmt.Fprintf(w, "total %d\n", total)

	owner := l.virtOS.Getenv(EnvUser)
	if owner == "" {
		owner = "root"
	}
	thisYear := l.virtOS.Now().Year()

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, info := range entries {
		links := 1
		if info.IsDir() {
			links = 2
		}

		layout := "Jan _2 2006"
		if info.ModTime().Year() >= thisYear {
			layout = "Jan _2 15:04"
		}

		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			info.Mode(), links, owner, owner, l.size(info.Size()), info.ModTime().Format(layout), l.name(info))
	}
	tw.Flush()
}

// writeColumns prints entries top to bottom, then left to right, in as many
// columns as fit the width.
func (l *lsListing) writeColumns(w io.Writer, entries []fs.FileInfo) {
	if len(entries) == 0 {
		return
	}

	lengths := make([]int, len(entries))
	for i, info := range entries {
		lengths[i] = len(info.Name())
	}

	widths := []int{0}
	if !l.onePerLine {
		widths = columnize(lengths, l.width)
	}
	rows := (len(entries) + len(widths) - 1) / len(widths)

	for row := 0; row < rows; row++ {
		var line strings.Builder
		for col, width := range widths {
			i := col*rows + row
			if i >= len(entries) {
				break
			}
			if col > 0 {
				line.WriteString(strings.Repeat(" ", lsColumnPadding))
			}
			line.WriteString(l.name(entries[i]))
			if pad := width - lengths[i]; pad > 0 {
				line.WriteString(strings.Repeat(" ", pad))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

// columnize finds the most columns that fit names of the given lengths in
// screenWidth and returns the width of each. A single column is returned if
// nothing fits.
func columnize(lengths []int, screenWidth int) []int {
	if len(lengths) == 0 {
		return []int{0}
	}

	// The narrowest possible column is a single character.
	columns := screenWidth / (1 + lsColumnPadding)
	if columns > len(lengths) {
		columns = len(lengths)
	}

	for ; columns > 1; columns-- {
		rows := (len(lengths) + columns - 1) / columns
		// Layouts that leave the last column empty are the same as one with
		// fewer columns.
		if (columns-1)*rows >= len(lengths) {
			continue
		}

		widths := make([]int, columns)
		for i, n := range lengths {
			if n > widths[i/rows] {
				widths[i/rows] = n
			}
		}

		total := (columns - 1) * lsColumnPadding
		for _, width := range widths {
			total += width
		}
		if total <= screenWidth {
			return widths
		}
	}

	longest := 0
	for _, n := range lengths {
		if n > longest {
			longest = n
		}
	}
	return []int{longest}
}

func terminalWidth(virtOS vos.VOS) int {
	if width, err := strconv.Atoi(virtOS.Getenv("COLUMNS")); err == nil && width >= 0 {
		return width
	}
	return defaultLineWidth
}

// Ls lists directory contents.
func Ls(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "ls [-1alhr] [-w WIDTH] [--color=WHEN] [FILE]...",
		Short: "List information about the FILEs (the current directory by default).",
	}

	opts := cmd.Flags()
	all := opts.Bool('a', "don't ignore entries starting with .")
	long := opts.Bool('l', "use a long listing format")
	onePerLine := opts.Bool('1', "list one file per line")
	reverse := opts.BoolLong("reverse", 'r', "reverse the sort order")
	human := opts.BoolLong("human-readable", 'h', "print human readable sizes")
	width := opts.IntLong("width", 'w', terminalWidth(virtOS), "set the output width, 0 is unlimited")
	// -h is taken by --human-readable.
	cmd.ShowHelp = opts.BoolLong("help", '?', "show this help and exit")

	listing := &lsListing{virtOS: virtOS}
	listing.color.Init(opts, virtOS)

	return cmd.Run(virtOS, func() int {
		listing.all = *all
		listing.long = *long
		listing.onePerLine = *onePerLine
		listing.reverse = *reverse
		listing.width = *width
		if listing.width == 0 {
			listing.width = math.MaxInt32
		}
		listing.size = func(n int64) string { return strconv.FormatInt(n, 10) }
		if *human {
			listing.size = BytesToHuman
		}

		targets := opts.Args()
		if len(targets) == 0 {
			targets = []string{"."}
		}
		sort.Strings(targets)

		status := 0
		printed := 0
		for _, target := range targets {
			entries, err := listing.entries(target)
			if err != nil {
				cmd.LogProgramError(virtOS, err)
				status = 1
				continue
			}

			w := virtOS.Stdout()
			if len(targets) > 1 {
				if printed > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s:\n", target)
			}
			printed++

			if listing.long {
				listing.writeLong(w, entries)
			} else {
				listing.writeColumns(w, entries)
			}
		}
		return status
	})
}

var _ vos.ProcessFunc = Ls

func init() {
	mustAddBinCmd("ls", Ls)
}
