package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suara-kampus/band-manager/internal/errdef"
)

func TestRepository_ReorderSongs_RejectsDuplicateIds(t *testing.T) {
	r := repository{}

	err := r.reorderSongs(context.Background(), 1, []uint{4, 4, 5})

	require.Error(t, err)
	require.True(t, errdef.IsBadRequest(err))
	require.Contains(t, err.Error(), "duplicate song id 4")
}
