package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
)

const (
	ModeMaskUser  fs.FileMode = 0700
	ModeMaskGroup fs.FileMode = 0070
	ModeMaskOther fs.FileMode = 0007
	ModeMaskAll               = ModeMaskUser | ModeMaskGroup | ModeMaskOther

	ModeRead  fs.FileMode = 0444
	ModeWrite fs.FileMode = 0222
	ModeExec  fs.FileMode = 0111
)

// modeAction is a single +, - or = with the permissions it applies.
type modeAction struct {
	op    rune
	perms fs.FileMode
	// execIfSearchable is X, execute only for directories or files that
	// are already executable by someone.
	execIfSearchable bool
}

// modeClause is one comma separated part of a symbolic mode like "ug+rx".
type modeClause struct {
	who     fs.FileMode
	actions []modeAction
}

// ModeExpr is a parsed chmod mode, either octal or symbolic.
type ModeExpr struct {
	octal   *fs.FileMode
	clauses []modeClause
}

// ParseModeExpr parses an octal mode like 755 or symbolic clauses like
// u+x,go-w. Setuid, setgid and sticky bits are accepted and ignored.
func ParseModeExpr(expr string) (ModeExpr, error) {
	if n, err := strconv.ParseUint(expr, 8, 32); err == nil {
		mode := fs.FileMode(n) & ModeMaskAll
		return ModeExpr{octal: &mode}, nil
	}

	var out ModeExpr
	for _, text := range strings.Split(expr, ",") {
		var clause modeClause
		for _, ch := range text {
			var current *modeAction
			if n := len(clause.actions); n > 0 {
				current = &clause.actions[n-1]
			}

			switch {
			case strings.ContainsRune("+-=", ch):
				clause.actions = append(clause.actions, modeAction{op: ch})
				continue
			case current == nil:
				switch ch {
				case 'a':
					clause.who |= ModeMaskAll
				case 'u':
					clause.who |= ModeMaskUser
				case 'g':
					clause.who |= ModeMaskGroup
				case 'o':
					clause.who |= ModeMaskOther
				case 'r', 'w', 'x', 'X', 's', 't':
					return ModeExpr{}, errors.New("no action provided")
				default:
					return ModeExpr{}, fmt.Errorf("unknown symbol %q", ch)
				}
				continue
			}

			switch ch {
			case 'r':
				current.perms |= ModeRead
			case 'w':
				current.perms |= ModeWrite
			case 'x':
				current.perms |= ModeExec
			case 'X':
				current.execIfSearchable = true
			case 's', 't':
			default:
				return ModeExpr{}, fmt.Errorf("unknown symbol %q", ch)
			}
		}

		if len(clause.actions) == 0 {
			return ModeExpr{}, errors.New("no action provided")
		}
		if clause.who == 0 {
			clause.who = ModeMaskAll
		}
		out.clauses = append(out.clauses, clause)
	}
	return out, nil
}

// Apply returns orig changed by the expression. Bits outside the
// permissions are kept.
func (m ModeExpr) Apply(orig fs.FileMode) fs.FileMode {
	if m.octal != nil {
		return orig&^ModeMaskAll | *m.octal
	}

	mode := orig
	for _, clause := range m.clauses {
		for _, action := range clause.actions {
			perms := action.perms
			if action.execIfSearchable && (mode.IsDir() || mode&ModeExec != 0) {
				perms |= ModeExec
			}
			perms &= clause.who

			switch action.op {
			case '+':
				mode |= perms
			case '-':
				mode &^= perms
			case '=':
				mode = mode&^clause.who | perms
			}
		}
	}
	return mode
}

// ChmodApplyMode parses mode and applies it to orig.
func ChmodApplyMode(mode string, orig fs.FileMode) (fs.FileMode, error) {
	expr, err := ParseModeExpr(mode)
	if err != nil {
		return orig, err
	}
	return expr.Apply(orig), nil
}

// Chmod implements a POSIX chmod command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/chmod.html
func Chmod(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "chmod [-R] MODE FILE...",
		Short: "Change the mode of each FILE to MODE.",
	}
	recursive := cmd.Flags().BoolLong("recursive", 'R', "change files and directories recursively")

	// Modes like -w look like flags.
	if args := virtOS.Args(); len(args) > 1 && strings.HasPrefix(args[1], "-") {
		if _, err := ParseModeExpr(args[1]); err == nil {
			return chmodFiles(cmd, virtOS, args[1:], false)
		}
	}

	return cmd.Run(virtOS, func() int {
		return chmodFiles(cmd, virtOS, cmd.Flags().Args(), *recursive)
	})
}

func chmodFiles(cmd *SimpleCommand, virtOS vos.VOS, args []string, recursive bool) int {
	if len(args) < 2 {
		cmd.LogProgramError(virtOS, errors.New("missing operand"))
		return 1
	}

	expr, err := ParseModeExpr(args[0])
	if err != nil {
		cmd.LogProgramError(virtOS, fmt.Errorf("invalid mode %q: %w", args[0], err))
		return 1
	}

	var change func(name string) error
	change = func(name string) error {
		info, err := virtOS.Stat(name)
		if err != nil {
			return err
		}
		if err := virtOS.Chmod(name, expr.Apply(info.Mode())); err != nil {
			return err
		}
		if !recursive || !info.IsDir() {
			return nil
		}

		children, err := virtOS.ReadDir(name)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := change(path.Join(name, child.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	status := 0
	for _, name := range args[1:] {
		if err := change(name); err != nil {
			cmd.LogProgramError(virtOS, err)
			status = 1
		}
	}
	return status
}

func init() {
	mustAddBinCmd("chmod", Chmod)
}
