package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned for paths outside users/{uid} or with empty segments.
var ErrInvalidPath = errors.New("invalid document path")

const rootCollection = "users"

// Path is a parsed store path. An even number of segments names a document,
// an odd number names a collection.
type Path struct {
	raw      string
	segments []string
}

func ParsePath(p string) (Path, error) {
	p = strings.Trim(p, "/")
	segments := strings.Split(p, "/")
	if len(segments) < 2 || segments[0] != rootCollection {
		return Path{}, fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			return Path{}, fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return Path{raw: p, segments: segments}, nil
}

func (p Path) String() string { return p.raw }

func (p Path) IsDocument() bool { return len(p.segments)%2 == 0 }

// UserID is the namespace owner.
func (p Path) UserID() string { return p.segments[1] }

// ID is the last segment.
func (p Path) ID() string { return p.segments[len(p.segments)-1] }

// Parent is the collection containing a document, empty for users/{uid}.
func (p Path) Parent() string {
	if len(p.segments) <= 2 {
		return ""
	}
	return strings.Join(p.segments[:len(p.segments)-1], "/")
}

// UserDoc is the path of the user's top-level document.
func UserDoc(uid string) string { return rootCollection + "/" + uid }

// Collection is the path of a per-user collection.
func Collection(uid, name string) string { return UserDoc(uid) + "/" + name }

// Doc is the path of a document inside a per-user collection.
func Doc(uid, collection, id string) string { return Collection(uid, collection) + "/" + id }
