package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/routine"
	"github.com/trezcool/ratiba/core/user"
)

// NewConfig returns an app config suitable for tests: no debug echo of error
// chains, no request logs.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	now := time.Now().UTC()
	if len(createdAt) > 0 {
		now = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  core.CleanString(uname, true /* lower */),
		Email:     core.CleanString(email, true /* lower */),
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}

	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateRoutine(
	t *testing.T,
	repo routine.Repository,
	userID, hhmm, title, category string,
	duration int,
) routine.Routine {
	t.Helper()

	now := time.Now().UTC()
	r, err := repo.CreateRoutine(context.Background(), routine.Routine{
		Time:      hhmm,
		Title:     title,
		Category:  category,
		Duration:  duration,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateRoutine() failed: %v", err)
	}
	return r
}
