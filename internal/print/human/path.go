package human

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Path is a file system path that may start with "~/" to refer to the home
// directory of the current user. The prefix is kept as written and expanded
// by Resolve.
type Path string

func (p Path) String() string { return string(p) }

// Resolve expands the home directory prefix of p.
func (p Path) Resolve() (string, error) {
	s := string(p)
	rest, ok := strings.CutPrefix(s, "~")
	if !ok || (rest != "" && rest[0] != os.PathSeparator) {
		return s, nil
	}
	home, ok := os.LookupEnv("HOME")
	if !ok {
		u, err := user.Current()
		if err != nil {
			return s, err
		}
		home = u.HomeDir
	}
	return filepath.Join(home, rest), nil
}

func (p *Path) Set(s string) error {
	*p = Path(s)
	return nil
}

func (p *Path) UnmarshalText(b []byte) error { return p.Set(string(b)) }
