package model

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrganizationLevel string

const (
	LevelCommissioner OrganizationLevel = "COMMISSIONER"
	LevelPengurus     OrganizationLevel = "PENGURUS"
	LevelSpecta       OrganizationLevel = "SPECTA"
	LevelTalent       OrganizationLevel = "TALENT"
)

// ManagerLevels are the organization levels allowed to moderate events and
// trigger administrative endpoints.
var ManagerLevels = []OrganizationLevel{LevelCommissioner, LevelPengurus}

// TeamLevels are the organization levels targeted by "team only" fan-outs.
var TeamLevels = []OrganizationLevel{LevelSpecta, LevelTalent}

// User domain object defining a club member
// swagger:model
type User struct {
	ID                uint              `gorm:"primarykey" json:"id"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	Name              string            `json:"name"`
	Email             string            `gorm:"index;unique" json:"email"`
	Password          string            `json:"-"`
	EmailToken        uuid.UUID         `json:"-"`
	Validated         bool              `json:"validated"`
	PasswordToken     sql.NullString    `json:"-"`
	PasswordTokenTTL  uint              `json:"-"`
	OrganizationLevel OrganizationLevel `gorm:"default:TALENT" json:"organizationLvl"`
	Instruments       Instruments       `gorm:"type:text" json:"instruments"`
}

func (u *User) IsManager() bool {
	return u.OrganizationLevel == LevelCommissioner || u.OrganizationLevel == LevelPengurus
}

func (u *User) IsTeamMember() bool {
	return u.OrganizationLevel == LevelSpecta || u.OrganizationLevel == LevelTalent
}

// Instruments is stored as a comma separated list so members can be filtered
// by instrument without a join table.
type Instruments []string

func (i Instruments) Value() (driver.Value, error) {
	return strings.Join(i, ","), nil
}

func (i *Instruments) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*i = nil
	case string:
		if v == "" {
			*i = nil
			return nil
		}
		*i = strings.Split(v, ",")
	case []byte:
		return i.Scan(string(v))
	default:
		return fmt.Errorf("unsupported instruments type %T", value)
	}
	return nil
}

type userContextKey int

var userKey userContextKey

// NewContextWithUser returns a new [context.Context] that carries the
// authenticated user.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the user stored in ctx, if any. It had to have
// been set by the authentication middleware before.
func GetUserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	return user, ok
}

var ErrNoUserInContext = errors.New("user not found on context")
