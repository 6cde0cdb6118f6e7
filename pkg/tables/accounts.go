package tables

import (
	"errors"
	"log"
	"strconv"

	"github.com/umputun/hostql/pkg/collector"
	"github.com/umputun/hostql/pkg/table"
)

// Users is users table, equality on uid looks up only the requested users
type Users struct {
	Collector AccountCollector
}

var usersSchema = table.Schema{
	{Name: "uid", Type: table.BigInt, Index: true, Unique: true},
	{Name: "gid", Type: table.BigInt},
	{Name: "uid_signed", Type: table.BigInt},
	{Name: "gid_signed", Type: table.BigInt},
	{Name: "username"},
	{Name: "description"},
	{Name: "directory"},
	{Name: "shell"},
	{Name: "uuid"},
}

// Name of the table
func (t *Users) Name() string { return "users" }

// Schema of the table
func (t *Users) Schema() table.Schema { return usersSchema }

// Generate returns rows of requested or all users
func (t *Users) Generate(req table.Request) ([]table.Row, error) {
	ids, all := requestedIDs(req.Constraints.Get("uid"))
	var users []collector.User
	if all {
		var err error
		if users, err = t.Collector.Users(); err != nil {
			log.Printf("[WARN] %v", err)
			return nil, nil
		}
	}
	for _, id := range ids {
		u, err := t.Collector.User(id)
		if err != nil {
			logLookup(err)
			continue
		}
		users = append(users, u)
	}

	res := make([]table.Row, 0, len(users))
	for _, u := range users {
		row := usersSchema.NewRow()
		row.SetInt("uid", u.UID)
		row.SetInt("gid", u.GID)
		row.SetInt("uid_signed", int64(int32(u.UID))) // nolint
		row.SetInt("gid_signed", int64(int32(u.GID))) // nolint
		row.Set("username", u.Username)
		row.Set("description", u.Description)
		row.Set("directory", u.Directory)
		row.Set("shell", u.Shell)
		row.Set("uuid", u.UUID)
		res = append(res, row)
	}
	return res, nil
}

// Groups is groups table, equality on gid looks up only the requested groups
type Groups struct {
	Collector AccountCollector
}

var groupsSchema = table.Schema{
	{Name: "gid", Type: table.BigInt, Index: true, Unique: true},
	{Name: "gid_signed", Type: table.BigInt},
	{Name: "groupname"},
}

// Name of the table
func (t *Groups) Name() string { return "groups" }

// Schema of the table
func (t *Groups) Schema() table.Schema { return groupsSchema }

// Generate returns rows of requested or all groups
func (t *Groups) Generate(req table.Request) ([]table.Row, error) {
	ids, all := requestedIDs(req.Constraints.Get("gid"))
	var groups []collector.Group
	if all {
		var err error
		if groups, err = t.Collector.Groups(); err != nil {
			log.Printf("[WARN] %v", err)
			return nil, nil
		}
	}
	for _, id := range ids {
		g, err := t.Collector.Group(id)
		if err != nil {
			logLookup(err)
			continue
		}
		groups = append(groups, g)
	}

	res := make([]table.Row, 0, len(groups))
	for _, g := range groups {
		row := groupsSchema.NewRow()
		row.SetInt("gid", g.GID)
		row.SetInt("gid_signed", int64(int32(g.GID))) // nolint
		row.Set("groupname", g.Name)
		res = append(res, row)
	}
	return res, nil
}

// requestedIDs returns numeric ids from equality constraints, all is true without such constraints.
// Negative and non-numeric values can't match an account and are dropped.
func requestedIDs(cl table.ConstraintList) (ids []int64, all bool) {
	eq := cl.Equals()
	if len(eq) == 0 {
		return nil, true
	}
	for _, v := range eq {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids, false
}

func logLookup(err error) {
	if errors.Is(err, collector.ErrNotFound) {
		return
	}
	log.Printf("[DEBUG] %v", err)
}
