package exec

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// Redirect origin tokens. An empty origin means stdout.
var (
	redirOut = map[string]bool{"": true, "1": true, "o": true, "out": true}
	redirErr = map[string]bool{"2": true, "e": true, "err": true}
	redirAll = map[string]bool{"&": true, "a": true, "all": true}
)

var redirRegex = regexp.MustCompile(
	`^(o(?:ut)?|e(?:rr)?|a(?:ll)?|&?\d?)(>?>|<)(o(?:ut)?|e(?:rr)?|a(?:ll)?|&?\d?)$`)

// e2oTokens and o2eTokens are the fd-duplication combinations that alias one
// stream to the other's current handle instead of opening a file, with any
// "&" stripped: err>out, 2>1, e>o and the reverse direction.
var (
	e2oTokens = map[string]bool{}
	o2eTokens = map[string]bool{}
)

func init() {
	for e := range redirErr {
		for o := range redirOut {
			if o == "" {
				continue
			}
			e2oTokens[e+">"+o] = true
			o2eTokens[o+">"+e] = true
		}
	}
}

type redirMode int

const (
	modeRead redirMode = iota
	modeWrite
	modeAppend
)

func (m redirMode) openFlags() int {
	switch m {
	case modeAppend:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case modeWrite:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		return os.O_RDONLY
	}
}

// isRedirect reports whether tok looks like a redirection operator.
func isRedirect(tok string) bool {
	return redirRegex.MatchString(tok)
}

// parseRedirect splits a redirect token into origin and mode, validating
// that the destination slot is empty (fd duplication is handled before this
// is called).
func parseRedirect(tok string) (origin string, mode redirMode, err error) {
	m := redirRegex.FindStringSubmatch(tok)
	if m == nil {
		return "", 0, buildErrorf("unrecognized redirection command: %q", tok)
	}
	origin, op, dest := m[1], m[2], m[3]

	switch op {
	case "<":
		mode = modeRead
		if origin != "" || dest != "" {
			return "", 0, buildErrorf("unrecognized redirection command: %q", tok)
		}
	case ">":
		mode = modeWrite
	case ">>":
		mode = modeAppend
	default:
		return "", 0, buildErrorf("unrecognized redirection command: %q", tok)
	}
	if mode != modeRead && dest != "" {
		return "", 0, buildErrorf("unrecognized redirection command: %q", tok)
	}
	return origin, mode, nil
}

// streamSet is the result of resolving one redirect token: at most one of
// each standard stream, or a merge marker.
type streamSet struct {
	stdin, stdout, stderr Stream
}

// resolveRedirect turns a redirect token and its optional target into
// concrete stream bindings. Files are opened eagerly so failures surface
// before any process is spawned.
func resolveRedirect(fs afero.Fs, tok, target string) (streamSet, error) {
	var out streamSet

	// Special cases that alias one stream to the other, no file involved.
	noAmp := strings.ReplaceAll(tok, "&", "")
	switch {
	case e2oTokens[noAmp]:
		out.stderr = Stream{Kind: StreamMergeStdout}
		return out, nil
	case o2eTokens[noAmp]:
		out.stdout = Stream{Kind: StreamMergeStderr}
		return out, nil
	}

	origin, mode, err := parseRedirect(tok)
	if err != nil {
		return out, err
	}
	if target == "" {
		return out, buildErrorf("redirection %q has no target", tok)
	}

	handle, err := safeOpen(fs, target, mode)
	if err != nil {
		return out, err
	}

	switch {
	case mode == modeRead:
		out.stdin = handleStream(handle)
	case redirAll[origin]:
		out.stdout = handleStream(handle)
		out.stderr = handleStream(handle)
	case redirOut[origin]:
		out.stdout = handleStream(handle)
	case redirErr[origin]:
		out.stderr = handleStream(handle)
	default:
		safeClose(handle)
		return out, buildErrorf("unrecognized redirection command: %q", tok)
	}
	return out, nil
}

// safeOpen opens a redirect target, converting failures into build errors
// that name the offending path.
func safeOpen(fs afero.Fs, name string, mode redirMode) (afero.File, error) {
	f, err := fs.OpenFile(name, mode.openFlags(), 0644)
	switch {
	case err == nil:
		return f, nil
	case os.IsPermission(err):
		return nil, &BuildError{Msg: fmt.Sprintf("%s: permission denied", name), Err: err}
	case os.IsNotExist(err):
		return nil, &BuildError{Msg: fmt.Sprintf("%s: no such file or directory", name), Err: err}
	default:
		return nil, &BuildError{Msg: fmt.Sprintf("%s: unable to open file", name), Err: err}
	}
}
