package handler

import (
	"testing"

	"github.com/suara-kampus/band-manager/pkg/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetUserFromContext(t *testing.T) {
	user := &model.User{
		ID:                1000,
		Email:             "some@thing.ac.id",
		OrganizationLevel: model.LevelTalent,
		Instruments:       model.Instruments{"guitar", "vocal"},
	}

	c := &gin.Context{}

	c.Set("user", user)

	u, err := GetUserFromContext(c)
	assert.NoError(t, err)

	assert.Equal(t, uint(1000), u.ID)
	assert.Equal(t, "some@thing.ac.id", u.Email)
	assert.Equal(t, model.LevelTalent, u.OrganizationLevel)
	assert.Equal(t, 2, len(u.Instruments))
}

func TestGetUserFromContext_Missing(t *testing.T) {
	c := &gin.Context{}

	_, err := GetUserFromContext(c)
	assert.ErrorIs(t, err, model.ErrNoUserInContext)
}
