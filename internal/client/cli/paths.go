package cli

import (
	"strings"

	"github.com/dmitrijs2005/gophdrive/internal/pathx"
)

// resolvePath interprets arg relative to cwd. A leading separator starts
// from the root; "." and ".." work as in a shell.
func resolvePath(cwd, arg string) (string, error) {
	p := pathx.Root()
	if !strings.HasPrefix(arg, pathx.Separator) {
		var err error
		if p, err = pathx.Parse(cwd); err != nil {
			return "", err
		}
	}

	for _, seg := range strings.Split(arg, pathx.Separator) {
		switch seg {
		case "", ".":
		case "..":
			p = p.Parent()
		default:
			next, err := pathx.Join(p, seg)
			if err != nil {
				return "", err
			}
			p = next
		}
	}
	return p.String(), nil
}

// splitPath returns the parent path and the last name of a resolved path.
func splitPath(full string) (string, string, error) {
	p, err := pathx.Parse(full)
	if err != nil {
		return "", "", err
	}
	return p.Parent().String(), p.Name(), nil
}
