package reftar

import (
	"os/user"
	"strconv"

	"github.com/sirupsen/logrus"
)

// lookupUsername resolves uid to a username, falling back to its decimal
// string form when the lookup fails — a missing /etc/passwd entry is
// recoverable, per spec.md §7's failure semantics, not fatal.
func lookupUsername(uid uint64) string {
	u, err := user.LookupId(strconv.FormatUint(uid, 10))
	if err != nil {
		logrus.WithError(err).WithField("uid", uid).Debug("reftar: username lookup failed, using numeric id")
		return strconv.FormatUint(uid, 10)
	}
	return u.Username
}

// lookupGroupname resolves gid to a group name, with the same numeric
// fallback as lookupUsername.
func lookupGroupname(gid uint64) string {
	g, err := user.LookupGroupId(strconv.FormatUint(gid, 10))
	if err != nil {
		logrus.WithError(err).WithField("gid", gid).Debug("reftar: groupname lookup failed, using numeric id")
		return strconv.FormatUint(gid, 10)
	}
	return g.Name
}
