package collector

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
)

// Accounts collects local users and groups from passwd and group files.
// Single lookups missing in the files fall back to the system resolver.
type Accounts struct {
	PasswdFile string
	GroupFile  string
}

// NewAccounts makes collector reading the standard /etc files
func NewAccounts() *Accounts {
	return &Accounts{PasswdFile: "/etc/passwd", GroupFile: "/etc/group"}
}

// Users returns all users from passwd file
func (a *Accounts) Users() ([]User, error) {
	var res []User
	err := scanRecords(a.PasswdFile, 7, func(rec []string) {
		uid, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return
		}
		gid, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			gid = -1
		}
		res = append(res, User{UID: uid, GID: gid, Username: rec[0], Description: rec[4], Directory: rec[5], Shell: rec[6]})
	})
	if err != nil {
		return nil, fmt.Errorf("can't read users: %w", err)
	}
	return res, nil
}

// User returns user by uid, ErrNotFound if there is no such user
func (a *Accounts) User(uid int64) (User, error) {
	users, err := a.Users()
	if err == nil {
		for _, u := range users {
			if u.UID == uid {
				return u, nil
			}
		}
	}

	u, err := user.LookupId(strconv.FormatInt(uid, 10))
	if err != nil {
		var unknown user.UnknownUserIdError
		if errors.As(err, &unknown) {
			return User{}, fmt.Errorf("uid %d: %w", uid, ErrNotFound)
		}
		return User{}, fmt.Errorf("can't lookup uid %d: %w", uid, err)
	}
	gid, err := strconv.ParseInt(u.Gid, 10, 64)
	if err != nil {
		gid = -1
	}
	return User{UID: uid, GID: gid, Username: u.Username, Description: u.Name, Directory: u.HomeDir}, nil
}

// Groups returns all groups from group file
func (a *Accounts) Groups() ([]Group, error) {
	var res []Group
	err := scanRecords(a.GroupFile, 3, func(rec []string) {
		gid, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return
		}
		res = append(res, Group{GID: gid, Name: rec[0]})
	})
	if err != nil {
		return nil, fmt.Errorf("can't read groups: %w", err)
	}
	return res, nil
}

// Group returns group by gid, ErrNotFound if there is no such group
func (a *Accounts) Group(gid int64) (Group, error) {
	groups, err := a.Groups()
	if err == nil {
		for _, g := range groups {
			if g.GID == gid {
				return g, nil
			}
		}
	}

	g, err := user.LookupGroupId(strconv.FormatInt(gid, 10))
	if err != nil {
		var unknown user.UnknownGroupIdError
		if errors.As(err, &unknown) {
			return Group{}, fmt.Errorf("gid %d: %w", gid, ErrNotFound)
		}
		return Group{}, fmt.Errorf("can't lookup gid %d: %w", gid, err)
	}
	return Group{GID: gid, Name: g.Name}, nil
}

// scanRecords calls fn for every colon separated record with at least minFields fields.
// Comments, blank lines and NIS compat entries are skipped.
func scanRecords(fname string, minFields int, fn func(rec []string)) error {
	fh, err := os.Open(fname) // nolint
	if err != nil {
		return err
	}
	defer fh.Close() // nolint

	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			continue
		}
		rec := strings.Split(line, ":")
		if len(rec) < minFields {
			continue
		}
		fn(rec)
	}
	return scanner.Err()
}
